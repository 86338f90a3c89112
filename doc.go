// Package rangedex embeds the range rewriter and its segment store in a Go
// program.
//
// Search requests whose range queries or range filters cover every indexed
// value of their field are rewritten to match_all. Everything else in the
// request is copied through unchanged, in the encoding it arrived in.
//
//	client, _ := rangedex.New(ctx,
//	    rangedex.WithValkey("localhost:6379", ""),
//	    rangedex.WithIndex("people", map[string]string{"age": "long"}),
//	)
//	defer client.Close()
//
//	_, _ = client.AddSegment(ctx, "people", []map[string]any{{"age": 18}, {"age": 64}})
//	out, _ := client.Rewrite(ctx, "people", []byte(`{"query":{"range":{"age":{"gte":0}}}}`))
//	// out: {"query":{"match_all":{}}}
package rangedex
