// Package walk provides fast directory-tree traversal built on native
// directory enumeration.
//
// The standard pattern of listing a directory's names and then calling a
// separate stat on each one pays two syscall rounds per entry. The
// operating system's own listing primitive already knows each entry's type
// (and on some platforms its full attributes), so this package captures
// that information during enumeration and reuses it, falling back to a
// single stat only for entries the platform could not type in-band.
//
// Two operations are exposed. Scan enumerates one directory lazily:
//
//	sc, err := walk.Scan(dir)
//	if err != nil {
//		return err
//	}
//	defer sc.Close()
//	for sc.Scan() {
//		fmt.Println(sc.Entry().Name, sc.Entry().Meta.Kind)
//	}
//
// Walk produces one record per directory of a tree, each carrying the
// directory's subdirectory and file entries:
//
//	for rec := range walk.Walk(root, walk.WalkOptions{}) {
//		fmt.Println(rec.Path, rec.DirNames(), rec.FileNames())
//	}
//
// Walk is a pull-based sequence: breaking out of the range stops the
// traversal and releases every open directory handle. Listing failures
// never abort the walk; they are routed to WalkOptions.OnError and the
// affected subtree contributes no records.
package walk
