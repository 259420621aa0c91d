// Package state sequences one query through the parse, validate, retrieve and
// generate stages as an explicit state machine with an error terminal.
package state

import (
	"context"
	"log"

	"github.com/DianaLeoTang/DT-Study-Companion/pkg/catalog"
	"github.com/DianaLeoTang/DT-Study-Companion/pkg/rag/intent"
	"github.com/DianaLeoTang/DT-Study-Companion/pkg/rag/response"
	"github.com/DianaLeoTang/DT-Study-Companion/pkg/rag/search"
)

// Node identifies one stage of the workflow.
type Node string

const (
	NodeParse    Node = "PARSE"
	NodeValidate Node = "VALIDATE"
	NodeRetrieve Node = "RETRIEVE"
	NodeGenerate Node = "GENERATE"
	NodeError    Node = "ERROR"
	NodeEnd      Node = "END"
)

// QueryState is the mutable record threaded through one workflow run. It is
// created per query, owned by exactly one invocation, and discarded after the
// QueryResult is produced.
type QueryState struct {
	Query string

	// parse stage
	BookName        string
	Version         string
	Question        string
	ParseConfidence float64

	// validate stage
	IsValid           bool
	ValidationMessage string
	FailureKind       catalog.FailureKind
	CollectionName    string
	BookMetadata      catalog.BookMetadata

	// retrieve stage
	RetrievedDocs []search.RetrievalResult

	// output
	Answer     string
	Sources    []response.Source
	Confidence float64
	Err        string
}

// QueryResult is the structured response every query produces, on every path.
type QueryResult struct {
	Answer     string            `json:"answer"`
	Sources    []response.Source `json:"sources"`
	Confidence float64           `json:"confidence"`
	BookName   string            `json:"book_name"`
	Version    string            `json:"version"`
	Question   string            `json:"question"`
}

// Workflow wires the four stages into the transition graph
// PARSE → VALIDATE → RETRIEVE → GENERATE → END, with ERROR → END.
type Workflow struct {
	parser       *intent.Parser
	resolver     *catalog.VersionResolver
	retriever    *search.Retriever
	generator    *response.Generator
	searchConfig search.Config
	logger       *log.Logger
}

func NewWorkflow(
	parser *intent.Parser,
	resolver *catalog.VersionResolver,
	retriever *search.Retriever,
	generator *response.Generator,
	searchConfig search.Config,
	logger *log.Logger,
) *Workflow {
	return &Workflow{
		parser:       parser,
		resolver:     resolver,
		retriever:    retriever,
		generator:    generator,
		searchConfig: searchConfig,
		logger:       logger,
	}
}

// Query runs one user query through the state machine. It always returns a
// well-formed QueryResult; failures surface as degraded answers, never as
// errors or panics.
func (w *Workflow) Query(ctx context.Context, userQuery string) QueryResult {
	state := &QueryState{Query: userQuery}

	node := NodeParse
	for node != NodeEnd {
		switch node {
		case NodeParse:
			node = w.parse(ctx, state)
		case NodeValidate:
			node = w.validate(state)
		case NodeRetrieve:
			node = w.retrieve(ctx, state)
		case NodeGenerate:
			node = w.generate(ctx, state)
		case NodeError:
			node = w.handleError(state)
		}
	}

	return QueryResult{
		Answer:     state.Answer,
		Sources:    state.Sources,
		Confidence: state.Confidence,
		BookName:   state.BookName,
		Version:    state.Version,
		Question:   state.Question,
	}
}

func (w *Workflow) parse(ctx context.Context, state *QueryState) Node {
	w.logger.Printf("[WORKFLOW] PARSE: %s", state.Query)

	parsed := w.parser.Parse(ctx, state.Query)
	state.BookName = parsed.BookName
	state.Version = parsed.Version
	state.Question = parsed.Question
	state.ParseConfidence = parsed.Confidence

	return NodeValidate
}

func (w *Workflow) validate(state *QueryState) Node {
	w.logger.Printf("[WORKFLOW] VALIDATE: book=%q version=%q", state.BookName, state.Version)

	v := w.resolver.Validate(state.BookName, state.Version)
	state.IsValid = v.IsValid
	state.ValidationMessage = v.Message
	state.FailureKind = v.Kind
	state.BookMetadata = v.Metadata

	if !v.IsValid {
		state.Err = v.Message
		return NodeError
	}

	// The resolver may have picked the default edition; take the version it
	// actually resolved.
	state.BookName = v.Metadata.BookName
	state.Version = v.Metadata.Version
	state.CollectionName = w.resolver.CollectionName(state.BookName, state.Version)

	w.logger.Printf("[WORKFLOW] VALIDATE passed: collection=%s", state.CollectionName)
	return NodeRetrieve
}

func (w *Workflow) retrieve(ctx context.Context, state *QueryState) Node {
	w.logger.Printf("[WORKFLOW] RETRIEVE: collection=%s", state.CollectionName)

	docs, err := w.retriever.Retrieve(ctx, state.CollectionName, state.Question, state.Version, w.searchConfig)
	if err != nil {
		state.Err = "文档检索失败: " + err.Error()
		return NodeError
	}

	// An empty result is not an error; the generator answers "not found".
	state.RetrievedDocs = docs
	return NodeGenerate
}

func (w *Workflow) generate(ctx context.Context, state *QueryState) Node {
	w.logger.Printf("[WORKFLOW] GENERATE: %d documents", len(state.RetrievedDocs))

	result := w.generator.Generate(ctx, state.Question, state.RetrievedDocs,
		state.BookName, state.Version, state.BookMetadata)

	state.Answer = result.Answer
	state.Sources = result.Sources
	state.Confidence = result.Confidence

	return NodeEnd
}

// handleError composes the user-facing failure message. Catalog lookup
// failures get the full books-and-versions listing appended so the user can
// correct the reference.
func (w *Workflow) handleError(state *QueryState) Node {
	msg := state.Err
	if msg == "" {
		msg = "未知错误"
	}

	if state.FailureKind == catalog.FailureBookNotFound || state.FailureKind == catalog.FailureVersionNotFound {
		msg += "\n\n" + w.resolver.ListAllBooksAndVersions()
	}

	state.Answer = "❌ " + msg
	state.Sources = []response.Source{}
	state.Confidence = 0.0

	w.logger.Printf("[WORKFLOW] ERROR handled: %s", state.Err)
	return NodeEnd
}
