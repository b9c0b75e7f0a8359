package extraction

import (
	"context"
	"fmt"

	"github.com/aws/aws-sdk-go-v2/aws"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/service/textract"
	txtypes "github.com/aws/aws-sdk-go-v2/service/textract/types"
	"go.uber.org/zap"

	"github.com/ginjaninja78/invoice-price-comparison/internal/config"
)

// DocumentAnalyzer turns raw document bytes into expense documents.
type DocumentAnalyzer interface {
	Analyze(ctx context.Context, document []byte) ([]ExpenseDocument, error)
}

// ExpenseAPI is the subset of the Textract client the analyzer uses.
type ExpenseAPI interface {
	AnalyzeExpense(ctx context.Context, params *textract.AnalyzeExpenseInput, optFns ...func(*textract.Options)) (*textract.AnalyzeExpenseOutput, error)
}

// TextractAnalyzer calls Textract AnalyzeExpense once per document, without
// retries.
type TextractAnalyzer struct {
	client ExpenseAPI
	logger *zap.Logger
}

// NewTextractAnalyzer builds a Textract client for the configured region.
// Static credentials and a custom endpoint are used when configured;
// otherwise the default AWS credential chain applies.
func NewTextractAnalyzer(ctx context.Context, cfg config.AWSConfig, logger *zap.Logger) (*TextractAnalyzer, error) {
	opts := []func(*awsconfig.LoadOptions) error{
		awsconfig.WithRegion(cfg.Region),
		awsconfig.WithRetryMaxAttempts(1),
	}
	if cfg.AccessKeyID != "" {
		opts = append(opts, awsconfig.WithCredentialsProvider(credentials.NewStaticCredentialsProvider(
			cfg.AccessKeyID,
			cfg.SecretAccessKey,
			"",
		)))
	}

	awsCfg, err := awsconfig.LoadDefaultConfig(ctx, opts...)
	if err != nil {
		return nil, fmt.Errorf("failed to load AWS config: %w", err)
	}

	client := textract.NewFromConfig(awsCfg, func(o *textract.Options) {
		if cfg.Endpoint != "" {
			o.BaseEndpoint = aws.String(cfg.Endpoint)
		}
	})

	return NewTextractAnalyzerWithClient(client, logger), nil
}

// NewTextractAnalyzerWithClient wraps an existing client.
func NewTextractAnalyzerWithClient(client ExpenseAPI, logger *zap.Logger) *TextractAnalyzer {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &TextractAnalyzer{client: client, logger: logger}
}

// Analyze sends the document bytes to AnalyzeExpense.
func (a *TextractAnalyzer) Analyze(ctx context.Context, document []byte) ([]ExpenseDocument, error) {
	out, err := a.client.AnalyzeExpense(ctx, &textract.AnalyzeExpenseInput{
		Document: &txtypes.Document{Bytes: document},
	})
	if err != nil {
		return nil, fmt.Errorf("textract AnalyzeExpense: %w", err)
	}

	docs := convertDocuments(out.ExpenseDocuments)
	a.logger.Debug("textract response",
		zap.Int("expense_documents", len(docs)),
		zap.Int("bytes", len(document)),
	)

	return docs, nil
}

func convertDocuments(in []txtypes.ExpenseDocument) []ExpenseDocument {
	docs := make([]ExpenseDocument, 0, len(in))

	for _, d := range in {
		doc := ExpenseDocument{SummaryFields: convertFields(d.SummaryFields)}
		for _, g := range d.LineItemGroups {
			group := LineItemGroup{}
			for _, item := range g.LineItems {
				group.LineItems = append(group.LineItems, LineItem{Fields: convertFields(item.LineItemExpenseFields)})
			}
			doc.LineItemGroups = append(doc.LineItemGroups, group)
		}
		docs = append(docs, doc)
	}

	return docs
}

func convertFields(in []txtypes.ExpenseField) []ExpenseField {
	fields := make([]ExpenseField, 0, len(in))

	for _, f := range in {
		var field ExpenseField
		if f.Type != nil {
			field.Type = aws.ToString(f.Type.Text)
		}
		if f.LabelDetection != nil {
			field.Label = aws.ToString(f.LabelDetection.Text)
		}
		if f.ValueDetection != nil {
			field.Value = aws.ToString(f.ValueDetection.Text)
		}
		fields = append(fields, field)
	}

	return fields
}
