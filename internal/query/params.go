package query

// defaultParams covers opinion and any type without a dedicated tuning row.
var defaultParams = RetrievalParams{AdjacentChunks: 2, TokenBudget: 2000, TopK: 10}

// typeParams tunes retrieval per classified intent. Narrow questions pull a
// tight window; enumerating questions pull wide.
var typeParams = map[Type]RetrievalParams{
	TypeDefinition:  {AdjacentChunks: 1, TokenBudget: 1000, TopK: 5},
	TypeExplanation: {AdjacentChunks: 2, TokenBudget: 2500, TopK: 10},
	TypeFactual:     {AdjacentChunks: 1, TokenBudget: 1500, TopK: 5},
	TypeComparison:  {AdjacentChunks: 2, TokenBudget: 3000, TopK: 12},
	TypeListing:     {AdjacentChunks: 3, TokenBudget: 4000, TopK: 15},
	TypeSummary:     {AdjacentChunks: 1, TokenBudget: 1500, TopK: 5},
}

// commandParams holds the fixed presets for explicit commands, bypassing the
// classification-based table entirely.
var commandParams = map[Command]RetrievalParams{
	CommandSummary:    {AdjacentChunks: 1, TokenBudget: 1500, TopK: 5},
	CommandDefinition: {AdjacentChunks: 1, TokenBudget: 1000, TopK: 5},
	CommandExpand:     {AdjacentChunks: 3, TokenBudget: 4000, TopK: 15},
}

// ParamsForType returns retrieval parameters for a classified intent.
// Pure and deterministic.
func ParamsForType(t Type) RetrievalParams {
	if p, ok := typeParams[t]; ok {
		return p
	}
	return defaultParams
}

// ParamsForCommand returns the preset for an explicit command.
// CommandNone falls through to the default row.
func ParamsForCommand(cmd Command) RetrievalParams {
	if p, ok := commandParams[cmd]; ok {
		return p
	}
	return defaultParams
}
