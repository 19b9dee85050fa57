package domain

type Role string

const (
	RoleUser      Role = "user"
	RoleAssistant Role = "assistant"
)

// ConversationTurn is one transcript entry. Turns are append-only and
// immutable once appended.
type ConversationTurn struct {
	Role    Role   `json:"role"`
	Content string `json:"content"`
}

type IntentKind string

const (
	IntentOutOfDomain IntentKind = "out_of_domain"
	IntentWhyQuestion IntentKind = "why_question"
	IntentSearch      IntentKind = "search"
	IntentFreeform    IntentKind = "freeform"
)

// StructuredIntent is the per-turn classification result. Built fresh
// each turn; the search fields stay empty until the collaborator
// returns a search action and the kind is upgraded to IntentSearch.
type StructuredIntent struct {
	Kind           IntentKind     `json:"kind"`
	Text           string         `json:"text"`
	Quantity       int            `json:"quantity"`
	RequestedIndex *int           `json:"requested_index,omitempty"`
	SearchParams   *SearchFilters `json:"search_params,omitempty"`
	Query          string         `json:"query,omitempty"`
}

type RecommendationMode string

const (
	ModeSingle RecommendationMode = "single"
	ModeTop    RecommendationMode = "top"
)

// RecommendationState holds the last surfaced picks. Owned exclusively
// by the conversation controller; overwritten whole on every successful
// search turn and read back for why-questions.
type RecommendationState struct {
	Items []SearchResultItem `json:"items"`
	Mode  RecommendationMode `json:"mode"`
}

func (s RecommendationState) Empty() bool {
	return len(s.Items) == 0
}

// ChatContext carries the caller's location and active filters into a
// turn, mirroring the search widget's system context.
type ChatContext struct {
	Coords  *Coordinates  `json:"coords,omitempty"`
	Filters SearchFilters `json:"filters"`
}

// IntentAction is the structured action the NL intent collaborator may
// attach to its reply. Only "search" is executed.
type IntentAction struct {
	Type     string `json:"type"`
	Query    string `json:"q,omitempty"`
	Category string `json:"category,omitempty"`
	Distance int    `json:"distance,omitempty"`
	OpenNow  bool   `json:"openNow,omitempty"`
	Index    *int   `json:"index,omitempty"`
}

// IntentReply is the NL intent collaborator's response. When Action is
// a search the message is ignored and the action executed; otherwise
// the message is surfaced verbatim after emphasis stripping.
type IntentReply struct {
	Message string        `json:"message"`
	Action  *IntentAction `json:"action,omitempty"`
}

// TurnBranch labels which controller branch resolved a turn. Used for
// metrics and turn events only.
type TurnBranch string

const (
	BranchOutOfDomain  TurnBranch = "out_of_domain"
	BranchWhyQuestion  TurnBranch = "why_question"
	BranchSearch       TurnBranch = "search"
	BranchEmptySearch  TurnBranch = "empty_search"
	BranchNoLocation   TurnBranch = "no_location"
	BranchFreeform     TurnBranch = "freeform"
	BranchCollaborator TurnBranch = "collaborator_error"
)

// TurnResult is what a completed turn reports back to the adapter.
type TurnResult struct {
	Reply           string     `json:"reply"`
	Branch          TurnBranch `json:"branch"`
	Picks           int        `json:"picks"`
	SearchPerformed bool       `json:"search_performed"`
}
