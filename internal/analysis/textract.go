package analysis

import (
	"context"
	"fmt"

	"github.com/aws/aws-sdk-go-v2/aws"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/service/textract"
	textracttypes "github.com/aws/aws-sdk-go-v2/service/textract/types"
)

// textractAPI is the slice of the Textract client this package calls.
type textractAPI interface {
	StartDocumentAnalysis(ctx context.Context, params *textract.StartDocumentAnalysisInput, optFns ...func(*textract.Options)) (*textract.StartDocumentAnalysisOutput, error)
	GetDocumentAnalysis(ctx context.Context, params *textract.GetDocumentAnalysisInput, optFns ...func(*textract.Options)) (*textract.GetDocumentAnalysisOutput, error)
	AnalyzeExpense(ctx context.Context, params *textract.AnalyzeExpenseInput, optFns ...func(*textract.Options)) (*textract.AnalyzeExpenseOutput, error)
}

// TextractClient implements Client against AWS Textract.
type TextractClient struct {
	api textractAPI
}

// NewTextractClient constructs a Textract-backed analysis client.
func NewTextractClient(ctx context.Context, region string) (*TextractClient, error) {
	loadOpts := []func(*awsconfig.LoadOptions) error{}
	if region != "" {
		loadOpts = append(loadOpts, awsconfig.WithRegion(region))
	}
	cfg, err := awsconfig.LoadDefaultConfig(ctx, loadOpts...)
	if err != nil {
		return nil, fmt.Errorf("load aws config: %w", err)
	}
	return &TextractClient{api: textract.NewFromConfig(cfg)}, nil
}

// StartAnalysis begins an asynchronous document-analysis job with the
// declared queries and completion-notification channel.
func (c *TextractClient) StartAnalysis(ctx context.Context, req StartRequest) (string, error) {
	queries := make([]textracttypes.Query, 0, len(req.Queries))
	for _, q := range req.Queries {
		queries = append(queries, textracttypes.Query{
			Text:  aws.String(q.Text),
			Alias: aws.String(q.Alias),
		})
	}

	out, err := c.api.StartDocumentAnalysis(ctx, &textract.StartDocumentAnalysisInput{
		DocumentLocation: &textracttypes.DocumentLocation{
			S3Object: &textracttypes.S3Object{
				Bucket: aws.String(req.Source.Bucket),
				Name:   aws.String(req.Source.Key),
			},
		},
		FeatureTypes: []textracttypes.FeatureType{
			textracttypes.FeatureTypeQueries,
			textracttypes.FeatureTypeForms,
		},
		QueriesConfig: &textracttypes.QueriesConfig{Queries: queries},
		NotificationChannel: &textracttypes.NotificationChannel{
			SNSTopicArn: aws.String(req.TopicARN),
			RoleArn:     aws.String(req.RoleARN),
		},
	})
	if err != nil {
		return "", &ServiceError{Op: fmt.Sprintf("start analysis bucket=%s key=%s", req.Source.Bucket, req.Source.Key), Err: err}
	}
	return aws.ToString(out.JobId), nil
}

// GetAnalysisPage fetches one page of result blocks for a completed job.
func (c *TextractClient) GetAnalysisPage(ctx context.Context, jobID, nextToken string) (Page, error) {
	input := &textract.GetDocumentAnalysisInput{JobId: aws.String(jobID)}
	if nextToken != "" {
		input.NextToken = aws.String(nextToken)
	}

	out, err := c.api.GetDocumentAnalysis(ctx, input)
	if err != nil {
		return Page{}, &ServiceError{Op: fmt.Sprintf("get analysis page job_id=%s", jobID), Err: err}
	}

	page := Page{
		Blocks:    make([]Block, 0, len(out.Blocks)),
		NextToken: aws.ToString(out.NextToken),
	}
	for _, b := range out.Blocks {
		page.Blocks = append(page.Blocks, convertBlock(b))
	}
	return page, nil
}

// AnalyzeExpense runs the one-shot expense analysis used by the
// synchronous receipt path. No job, no pagination.
func (c *TextractClient) AnalyzeExpense(ctx context.Context, source Location) ([]ExpenseDocument, error) {
	out, err := c.api.AnalyzeExpense(ctx, &textract.AnalyzeExpenseInput{
		Document: &textracttypes.Document{
			S3Object: &textracttypes.S3Object{
				Bucket: aws.String(source.Bucket),
				Name:   aws.String(source.Key),
			},
		},
	})
	if err != nil {
		return nil, &ServiceError{Op: fmt.Sprintf("analyze expense bucket=%s key=%s", source.Bucket, source.Key), Err: err}
	}

	docs := make([]ExpenseDocument, 0, len(out.ExpenseDocuments))
	for _, doc := range out.ExpenseDocuments {
		converted := ExpenseDocument{SummaryFields: make([]ExpenseField, 0, len(doc.SummaryFields))}
		for _, f := range doc.SummaryFields {
			field := ExpenseField{}
			if f.Type != nil {
				field.Type = aws.ToString(f.Type.Text)
			}
			if f.ValueDetection != nil {
				field.Value = aws.ToString(f.ValueDetection.Text)
			}
			converted.SummaryFields = append(converted.SummaryFields, field)
		}
		docs = append(docs, converted)
	}
	return docs, nil
}

func convertBlock(b textracttypes.Block) Block {
	block := Block{
		ID:   aws.ToString(b.Id),
		Kind: BlockKind(b.BlockType),
		Text: aws.ToString(b.Text),
	}
	if b.Confidence != nil {
		block.Confidence = float64(*b.Confidence)
	}
	if b.Query != nil {
		block.Alias = aws.ToString(b.Query.Alias)
	}
	for _, rel := range b.Relationships {
		if rel.Type != textracttypes.RelationshipTypeAnswer {
			continue
		}
		block.AnswerIDs = append(block.AnswerIDs, rel.Ids...)
	}
	return block
}

var _ Client = (*TextractClient)(nil)
