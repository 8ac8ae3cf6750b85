package auth

// Known OAuth scopes used by the journal API.
const (
	ScopeJournalRead  = "journal:read"
	ScopeJournalWrite = "journal:write"
)
