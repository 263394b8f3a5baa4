package query

// Type classifies the communicative intent of a user query.
// The set is closed: classifier output outside it maps to TypeUnknown.
type Type string

const (
	TypeDefinition  Type = "definition"
	TypeExplanation Type = "explanation"
	TypeFactual     Type = "factual"
	TypeComparison  Type = "comparison"
	TypeListing     Type = "listing"
	TypeSummary     Type = "summary"
	TypeOpinion     Type = "opinion"
	TypeGreeting    Type = "greeting"
	TypeUnclear     Type = "unclear"
	TypeUnknown     Type = "unknown"
)

// ParseType maps a raw classifier string to the closed Type set.
func ParseType(s string) Type {
	switch Type(s) {
	case TypeDefinition, TypeExplanation, TypeFactual, TypeComparison,
		TypeListing, TypeSummary, TypeOpinion, TypeGreeting, TypeUnclear:
		return Type(s)
	default:
		return TypeUnknown
	}
}

// Command is an explicit retrieval preset selected by the user instead of
// free-text intent classification. Commands bypass validation and rejection.
type Command string

const (
	CommandNone       Command = ""
	CommandSummary    Command = "summary"
	CommandDefinition Command = "definition"
	CommandExpand     Command = "expand"
)

// ParseCommand maps a request command string to a known Command, or CommandNone.
func ParseCommand(s string) Command {
	switch Command(s) {
	case CommandSummary, CommandDefinition, CommandExpand:
		return Command(s)
	default:
		return CommandNone
	}
}

// Classification is the outcome of classifying a single query.
// It is created once per query and never mutated afterwards.
type Classification struct {
	// Valid is false when the query was rejected before or during classification.
	Valid bool
	// Type is the classified intent, one of the closed Type set.
	Type Type
	// Normalized is a rewrite of the query using only words present in the input.
	Normalized string
	// Keywords are extracted search terms, each a word present in the input.
	Keywords []string
	// Confidence is the classifier's self-reported confidence in [0, 1].
	Confidence float64
	// RejectReason is a user-facing message, set only when Valid is false.
	RejectReason string
}

// RetrievalParams tunes a single retrieval call. Derived deterministically
// from a Classification or a Command; never edited by the user directly.
type RetrievalParams struct {
	// AdjacentChunks is how many neighboring chunks to pull in around each hit.
	AdjacentChunks int
	// TokenBudget is the soft cap on assembled context size in tokens.
	TokenBudget int
	// TopK is how many top-ranked chunks to request from the vector store.
	TopK int
}
