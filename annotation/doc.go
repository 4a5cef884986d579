// Package annotation assigns labeling tasks to a user and persists the results.
//
// A Tool wraps an ordered task sequence (the data source), a durable
// key-value store, a routing predicate deciding which tasks the user sees,
// and a content hasher deriving each task's identity. Records are stored
// under the cache key "username:digest", so the same task labeled by two
// users produces two independent records.
//
// # Usage
//
//	st, _ := store.NewBoltStore("./annotations.db")
//	defer st.Close()
//
//	tool, err := annotation.New(annotation.Config{
//	    DataSource: tasks,
//	    Username:   "alice",
//	    Store:      st,
//	})
//
//	// Label tasks one at a time.
//	for {
//	    task, err := tool.CurrentTask()
//	    if err != nil || task == nil {
//	        break
//	    }
//	    tool.Annotate(task, askUser(task), nil)
//	}
//
//	// Correct the most recent label.
//	recent, _ := tool.Recent(1)
//	if len(recent) > 0 {
//	    tool.Annotate(recent[0], "corrected", nil)
//	}
//
// # Current-task cursor
//
// CurrentTask resolves the first routed, unannotated task in data-source
// order and keeps returning that exact task until it is annotated. Labeling
// any other task (a correction) leaves the cursor untouched. After the
// cursor's own task is labeled, the next CurrentTask call resumes the scan
// from where it stopped rather than from the beginning. When the sequence is
// exhausted, CurrentTask returns nil and keeps doing so until ResetCursor.
//
// # Concurrency
//
// A Tool is not safe for concurrent use. Cursor and recent-history state
// are local to one Tool; two instances sharing a store see each other's
// durable writes only, and the last writer to a key wins.
package annotation
