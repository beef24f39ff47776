// Package srcdex embeds the source catalog in a Go program.
//
// A Client keeps one document per source file, keyed by its absolute path,
// in SQLite or in Redis with the query engine. Files are grouped by the
// package directory they were added from and addressed as
// "package/restpath" shortpaths.
//
//	client, _ := srcdex.New(ctx, srcdex.WithSQLite("catalog.db"))
//	defer client.Close()
//
//	report, _ := client.Scan(ctx, "/src/rails", "")
//	docs, _ := client.Search(ctx, srcdex.Query{
//	    Patterns: []string{"def change"},
//	    Suffixes: []string{"rb"},
//	    Limit:    20,
//	})
//	for _, d := range docs {
//	    fmt.Println(d.Shortpath)
//	}
package srcdex
