package core

// SeedDrafts returns the built-in sample records used when a store opens
// without prior persisted state. Kept small; real state replaces it on the
// first persisted mutation.
func SeedDrafts() []Draft {
	welcome := "Records live in an ordered list; toggle, edit, or remove them."
	return []Draft{
		{Title: "Welcome to listcore", Notes: &welcome, Category: "getting-started"},
		{Title: "Add your first record", Category: "getting-started", Priority: PriorityMedium},
		{Title: "Try the search and sort options", Category: "getting-started", Priority: PriorityLow},
	}
}
