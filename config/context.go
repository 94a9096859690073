package config

// Collection (or table) names shared by the persistent stores. The Supabase tables and
// their indexes are defined in store/supabase/schema.sql.
const (
	CollectionContacts  = "contacts"
	CollectionMessages  = "messages"
	CollectionReminders = "reminders"
	CollectionMemories  = "memories"
)

// Generation parameters for AI reply suggestions.
const (
	SuggestionTemperature = 0.7
	SuggestionMaxTokens   = 150
)
