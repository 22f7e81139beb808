package mcp

import "github.com/mark3labs/mcp-go/mcp"

var submitToolDef = mcp.NewTool("feedback_submit",
	mcp.WithDescription("Submit a star rating and review. Generates and stores the customer-facing reply, then returns it. Reviews shorter than the configured minimum are rejected and nothing is stored."),
	mcp.WithNumber("rating",
		mcp.Required(),
		mcp.Description("Star rating, 1 to 5"),
		mcp.Min(1),
		mcp.Max(5),
	),
	mcp.WithString("review",
		mcp.Required(),
		mcp.Description("Customer review text"),
	),
)

var regenerateToolDef = mcp.NewTool("feedback_regenerate",
	mcp.WithDescription("Re-run analysis for one record. The fresh summary and actions replace any stored analysis."),
	mcp.WithNumber("id",
		mcp.Required(),
		mcp.Description("Record id"),
	),
)

var listToolDef = mcp.NewTool("feedback_list",
	mcp.WithDescription("List feedback records, newest first."),
	mcp.WithNumber("limit", mcp.Description("Page size (default 20, max 100)")),
	mcp.WithNumber("offset", mcp.Description("Records to skip")),
	mcp.WithBoolean("pending", mcp.Description("Only records without an analysis")),
	mcp.WithString("bucket",
		mcp.Description("Filter by rating bucket"),
		mcp.Enum("positive", "neutral", "negative"),
	),
)

var fetchToolDef = mcp.NewTool("feedback_fetch",
	mcp.WithDescription("Fetch one feedback record with its reply and analysis."),
	mcp.WithNumber("id",
		mcp.Required(),
		mcp.Description("Record id"),
	),
)

var statsToolDef = mcp.NewTool("feedback_stats",
	mcp.WithDescription("Aggregate metrics: count, mean rating, positive and negative share, rating histogram and daily timeline."),
)
