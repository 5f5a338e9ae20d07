package analysis

import "context"

// BlockKind tags one unit of an analysis response. Kinds other than
// query/answer (lines, words, pages) pass through the client untouched
// and are ignored downstream.
type BlockKind string

const (
	KindQuery       BlockKind = "QUERY"
	KindQueryResult BlockKind = "QUERY_RESULT"
)

// Block is one unit of the analysis response. A QUERY block carries the
// alias and the identifiers of its linked answers; a QUERY_RESULT block
// carries answer text and a 0-100 confidence score.
type Block struct {
	ID         string
	Kind       BlockKind
	Text       string
	Confidence float64
	Alias      string
	AnswerIDs  []string
}

// Query is a named question posed to the analysis service. Alias is the
// stable field name used downstream.
type Query struct {
	Text  string
	Alias string
}

// Location points at a stored source document.
type Location struct {
	Bucket string
	Key    string
}

// StartRequest describes one asynchronous analysis job.
type StartRequest struct {
	Source   Location
	Queries  []Query
	TopicARN string
	RoleARN  string
}

// Page is one paginated slice of a job's result blocks.
type Page struct {
	Blocks    []Block
	NextToken string
}

// Client wraps the asynchronous document-analysis capability.
type Client interface {
	// StartAnalysis begins an asynchronous job and returns its opaque id.
	StartAnalysis(ctx context.Context, req StartRequest) (string, error)
	// GetAnalysisPage fetches one page of a completed job's results.
	// An empty nextToken requests the first page.
	GetAnalysisPage(ctx context.Context, jobID, nextToken string) (Page, error)
}

// ServiceError wraps a failed call to the external analysis service.
// Transient and permanent failures are indistinguishable at this layer.
type ServiceError struct {
	Op  string
	Err error
}

func (e *ServiceError) Error() string {
	if e.Err == nil {
		return "analysis service: " + e.Op
	}
	return "analysis service: " + e.Op + ": " + e.Err.Error()
}

func (e *ServiceError) Unwrap() error { return e.Err }
