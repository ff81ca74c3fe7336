package storage

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/feature/dynamodb/attributevalue"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb/types"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"

	"github.com/hdcn/portal/pkg/observability"
)

var tracer = otel.Tracer("github.com/hdcn/portal/pkg/storage")

// DynamoStore implements Store on DynamoDB with one table per collection.
type DynamoStore struct {
	client  *dynamodb.Client
	config  Config
	metrics *observability.Metrics
}

// NewDynamoStore creates a DynamoDB-backed store.
func NewDynamoStore(ctx context.Context, cfg Config, metrics *observability.Metrics) (*DynamoStore, error) {
	var awsCfg aws.Config
	var err error

	if cfg.AccessKey != "" && cfg.SecretKey != "" {
		// Static credentials for DynamoDB Local or explicit keys.
		awsCfg, err = awsconfig.LoadDefaultConfig(ctx,
			awsconfig.WithRegion(cfg.Region),
			awsconfig.WithCredentialsProvider(credentials.NewStaticCredentialsProvider(
				cfg.AccessKey,
				cfg.SecretKey,
				"",
			)),
		)
	} else {
		// Default credential chain (IAM roles, env vars, etc.).
		awsCfg, err = awsconfig.LoadDefaultConfig(ctx,
			awsconfig.WithRegion(cfg.Region),
		)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to load AWS config: %w", err)
	}

	client := dynamodb.NewFromConfig(awsCfg, func(o *dynamodb.Options) {
		if cfg.Endpoint != "" {
			o.BaseEndpoint = aws.String(cfg.Endpoint)
		}
	})

	if cfg.Timeout == 0 {
		cfg.Timeout = DefaultConfig().Timeout
	}

	return &DynamoStore{client: client, config: cfg, metrics: metrics}, nil
}

func (s *DynamoStore) tableFor(collection string) string {
	return s.config.TablePrefix + collection
}

func (s *DynamoStore) span(ctx context.Context, operation, collection string) (context.Context, trace.Span) {
	ctx, span := tracer.Start(ctx, "dynamodb."+operation,
		trace.WithAttributes(
			attribute.String("db.system", "dynamodb"),
			attribute.String("db.collection", collection),
		),
	)
	return ctx, span
}

func (s *DynamoStore) finish(span trace.Span, collection, operation string, start time.Time, err error) {
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
	}
	span.End()
	if s.metrics != nil {
		s.metrics.ObserveStorageOperation(collection, operation, start, err)
	}
}

// Get fetches one record, or ErrNotFound.
func (s *DynamoStore) Get(ctx context.Context, collection, id string) (Record, error) {
	start := time.Now()
	ctx, span := s.span(ctx, "GetItem", collection)
	ctx, cancel := context.WithTimeout(ctx, s.config.Timeout)
	defer cancel()

	out, err := s.client.GetItem(ctx, &dynamodb.GetItemInput{
		TableName: aws.String(s.tableFor(collection)),
		Key:       recordKey(id),
	})
	if err == nil && out.Item == nil {
		err = ErrNotFound
	}
	s.finish(span, collection, "get", start, err)
	if err != nil {
		if errors.Is(err, ErrNotFound) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("dynamodb get failed: %w", err)
	}

	var rec Record
	if err := attributevalue.UnmarshalMap(out.Item, &rec); err != nil {
		return nil, fmt.Errorf("failed to unmarshal record: %w", err)
	}
	return rec, nil
}

// Put writes a complete record under the given id.
func (s *DynamoStore) Put(ctx context.Context, collection, id string, record Record) error {
	start := time.Now()
	ctx, span := s.span(ctx, "PutItem", collection)
	ctx, cancel := context.WithTimeout(ctx, s.config.Timeout)
	defer cancel()

	rec := record.Clone()
	rec["id"] = id
	item, err := attributevalue.MarshalMap(rec)
	if err == nil {
		_, err = s.client.PutItem(ctx, &dynamodb.PutItemInput{
			TableName: aws.String(s.tableFor(collection)),
			Item:      item,
		})
	}
	s.finish(span, collection, "put", start, err)
	if err != nil {
		return fmt.Errorf("dynamodb put failed: %w", err)
	}
	return nil
}

// Update merges a patch into an existing record and writes it back. The
// portal's records are small documents; read-merge-write matches how the
// handlers use them.
func (s *DynamoStore) Update(ctx context.Context, collection, id string, patch Record) (Record, error) {
	existing, err := s.Get(ctx, collection, id)
	if err != nil {
		return nil, err
	}
	merged := existing.Clone()
	for k, v := range patch {
		merged[k] = v
	}
	if err := s.Put(ctx, collection, id, merged); err != nil {
		return nil, err
	}
	return merged, nil
}

// Delete removes a record, or ErrNotFound.
func (s *DynamoStore) Delete(ctx context.Context, collection, id string) error {
	start := time.Now()
	ctx, span := s.span(ctx, "DeleteItem", collection)
	ctx, cancel := context.WithTimeout(ctx, s.config.Timeout)
	defer cancel()

	_, err := s.client.DeleteItem(ctx, &dynamodb.DeleteItemInput{
		TableName:           aws.String(s.tableFor(collection)),
		Key:                 recordKey(id),
		ConditionExpression: aws.String("attribute_exists(id)"),
	})
	var condFailed *types.ConditionalCheckFailedException
	if errors.As(err, &condFailed) {
		err = ErrNotFound
	}
	s.finish(span, collection, "delete", start, err)
	if err != nil {
		if errors.Is(err, ErrNotFound) {
			return ErrNotFound
		}
		return fmt.Errorf("dynamodb delete failed: %w", err)
	}
	return nil
}

// List returns every record in a collection via a paginated scan.
func (s *DynamoStore) List(ctx context.Context, collection string) ([]Record, error) {
	start := time.Now()
	ctx, span := s.span(ctx, "Scan", collection)
	ctx, cancel := context.WithTimeout(ctx, s.config.Timeout)
	defer cancel()

	var records []Record
	paginator := dynamodb.NewScanPaginator(s.client, &dynamodb.ScanInput{
		TableName: aws.String(s.tableFor(collection)),
	})
	var err error
	for paginator.HasMorePages() {
		var page *dynamodb.ScanOutput
		page, err = paginator.NextPage(ctx)
		if err != nil {
			break
		}
		for _, item := range page.Items {
			var rec Record
			if err = attributevalue.UnmarshalMap(item, &rec); err != nil {
				break
			}
			records = append(records, rec)
		}
		if err != nil {
			break
		}
	}
	s.finish(span, collection, "list", start, err)
	if err != nil {
		return nil, fmt.Errorf("dynamodb scan failed: %w", err)
	}
	return records, nil
}

// HealthCheck verifies DynamoDB connectivity.
func (s *DynamoStore) HealthCheck(ctx context.Context) error {
	_, err := s.client.ListTables(ctx, &dynamodb.ListTablesInput{Limit: aws.Int32(1)})
	return err
}

func recordKey(id string) map[string]types.AttributeValue {
	return map[string]types.AttributeValue{
		"id": &types.AttributeValueMemberS{Value: id},
	}
}
