package analysis

import "context"

// FetchAllBlocks drains every result page for a job, in page order.
// Extraction needs the full block graph before it can resolve answer
// edges, so there is no partial-result fallback: any page failure fails
// the whole fetch.
func FetchAllBlocks(ctx context.Context, client Client, jobID string) ([]Block, error) {
	var blocks []Block
	nextToken := ""
	for {
		page, err := client.GetAnalysisPage(ctx, jobID, nextToken)
		if err != nil {
			return nil, err
		}
		blocks = append(blocks, page.Blocks...)
		if page.NextToken == "" {
			return blocks, nil
		}
		nextToken = page.NextToken
	}
}
