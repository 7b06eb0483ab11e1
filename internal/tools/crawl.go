package tools

import (
	"context"

	"github.com/modelcontextprotocol/go-sdk/mcp"

	"github.com/sasif-infinite/mcp/internal/orchestrator"
)

// RegisterCrawlTools registers the crawl and question-answering tools.
func RegisterCrawlTools(srv *mcp.Server, orch *orchestrator.Orchestrator) {
	registerCrawlTool(srv, orch)
	registerAnswerTool(srv, orch)
	registerCrawlThenAnswerTool(srv, orch)
}

type crawlReq struct {
	MaxPages int `json:"max_pages"`
	MaxDepth int `json:"max_depth"`
}

type crawlResp struct {
	Status       orchestrator.CrawlStatus `json:"status"`
	PagesIndexed int                      `json:"pages_indexed"`
	PagesFailed  int                      `json:"pages_failed"`
	Entries      []orchestrator.Entry     `json:"entries"`
}

func registerCrawlTool(srv *mcp.Server, orch *orchestrator.Orchestrator) {
	tool := &mcp.Tool{
		Name: "crawl_and_index_infinite_site",
		Description: "Crawl https://www.infinite.com/ (same-origin, robots-respecting) " +
			"and index page text for Q&A. Limits are clamped server-side.",
		InputSchema: inputSchema(map[string]any{
			"max_pages": map[string]any{
				"type":        "integer",
				"description": "Maximum pages to crawl (caps at 40)",
			},
			"max_depth": map[string]any{
				"type":        "integer",
				"description": "Maximum link depth to follow (caps at 2)",
			},
		}, nil),
	}

	register(srv, tool, func(ctx context.Context, req crawlReq) (any, error) {
		result, err := orch.Crawl(ctx, req.MaxPages, req.MaxDepth)
		if err != nil {
			return nil, err
		}
		return crawlResp(result), nil
	})
}

type answerReq struct {
	Question string `json:"question"`
	TopK     int    `json:"top_k"`
}

func registerAnswerTool(srv *mcp.Server, orch *orchestrator.Orchestrator) {
	tool := &mcp.Tool{
		Name: "answer_question_about_infinite",
		Description: "Answer a question using the crawled Infinite site content. " +
			"Returns snippets and source URLs from the top matches.",
		InputSchema: inputSchema(map[string]any{
			"question": map[string]any{
				"type":        "string",
				"description": "Question about content on https://www.infinite.com/",
			},
			"top_k": map[string]any{
				"type":        "integer",
				"description": "Number of top hits to include (default 3)",
			},
		}, []string{"question"}),
	}

	register(srv, tool, func(ctx context.Context, req answerReq) (any, error) {
		return orch.Answer(ctx, req.Question, req.TopK), nil
	})
}

type crawlThenAnswerReq struct {
	Question string `json:"question"`
	MaxPages int    `json:"max_pages"`
	MaxDepth int    `json:"max_depth"`
	TopK     int    `json:"top_k"`
}

func registerCrawlThenAnswerTool(srv *mcp.Server, orch *orchestrator.Orchestrator) {
	tool := &mcp.Tool{
		Name: "crawl_then_answer_about_infinite",
		Description: "Convenience tool: crawl then immediately answer the question. " +
			"Useful when the index may be empty or stale.",
		InputSchema: inputSchema(map[string]any{
			"question": map[string]any{
				"type":        "string",
				"description": "Question about content on https://www.infinite.com/",
			},
			"max_pages": map[string]any{
				"type":        "integer",
				"description": "Maximum pages to crawl (caps at 40)",
			},
			"max_depth": map[string]any{
				"type":        "integer",
				"description": "Maximum link depth to follow (caps at 2)",
			},
			"top_k": map[string]any{
				"type":        "integer",
				"description": "Number of top hits to include (default 3)",
			},
		}, []string{"question"}),
	}

	register(srv, tool, func(ctx context.Context, req crawlThenAnswerReq) (any, error) {
		crawlRes, answerRes, err := orch.CrawlThenAnswer(ctx, req.Question, req.MaxPages, req.MaxDepth, req.TopK)
		if err != nil {
			return nil, err
		}
		return map[string]any{
			"crawl":  crawlResp(crawlRes),
			"answer": answerRes,
		}, nil
	})
}
