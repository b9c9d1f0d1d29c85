// Package dynamodb implements the photo metadata repo using Amazon DynamoDB.
//
// Photos live in a single table keyed by photo_id with two global secondary
// indexes for owner listings:
//
//   - UserIdIndex: user_id (hash), created_key (range)
//   - UserVersionIndex: user_version (hash), created_key (range)
//
// created_key is the creation timestamp followed by the photo ID, so a
// descending query returns photos newest first with a stable tie break.
package dynamodb

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/credentials"
	ddb "github.com/aws/aws-sdk-go-v2/service/dynamodb"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb/types"
	"github.com/sagarc03/snapvault"
)

const (
	UserIDIndex      = "UserIdIndex"
	UserVersionIndex = "UserVersionIndex"
)

const tableActiveTimeout = 2 * time.Minute

// API is the subset of the DynamoDB client used by this package.
type API interface {
	GetItem(ctx context.Context, params *ddb.GetItemInput, optFns ...func(*ddb.Options)) (*ddb.GetItemOutput, error)
	PutItem(ctx context.Context, params *ddb.PutItemInput, optFns ...func(*ddb.Options)) (*ddb.PutItemOutput, error)
	UpdateItem(ctx context.Context, params *ddb.UpdateItemInput, optFns ...func(*ddb.Options)) (*ddb.UpdateItemOutput, error)
	DeleteItem(ctx context.Context, params *ddb.DeleteItemInput, optFns ...func(*ddb.Options)) (*ddb.DeleteItemOutput, error)
	Query(ctx context.Context, params *ddb.QueryInput, optFns ...func(*ddb.Options)) (*ddb.QueryOutput, error)
	CreateTable(ctx context.Context, params *ddb.CreateTableInput, optFns ...func(*ddb.Options)) (*ddb.CreateTableOutput, error)
	DescribeTable(ctx context.Context, params *ddb.DescribeTableInput, optFns ...func(*ddb.Options)) (*ddb.DescribeTableOutput, error)
	ListTables(ctx context.Context, params *ddb.ListTablesInput, optFns ...func(*ddb.Options)) (*ddb.ListTablesOutput, error)
}

// Options configures the DynamoDB client.
// Endpoint overrides the AWS endpoint, e.g. for DynamoDB Local.
// Static credentials are used when both keys are set, otherwise the
// default AWS credential chain applies.
type Options struct {
	Region    string
	Endpoint  string
	AccessKey string
	SecretKey string
}

type database struct {
	client API
	tables snapvault.Tables
}

// Connect builds a DynamoDB client. No request is made until Ping.
func Connect(ctx context.Context, opts Options, tables snapvault.Tables) (*database, error) {
	var loadOpts []func(*awsconfig.LoadOptions) error
	if opts.Region != "" {
		loadOpts = append(loadOpts, awsconfig.WithRegion(opts.Region))
	}
	if opts.AccessKey != "" && opts.SecretKey != "" {
		loadOpts = append(loadOpts, awsconfig.WithCredentialsProvider(
			credentials.NewStaticCredentialsProvider(opts.AccessKey, opts.SecretKey, ""),
		))
	}

	awsCfg, err := awsconfig.LoadDefaultConfig(ctx, loadOpts...)
	if err != nil {
		return nil, fmt.Errorf("connect dynamodb: load aws config: %w", err)
	}

	client := ddb.NewFromConfig(awsCfg, func(o *ddb.Options) {
		if opts.Endpoint != "" {
			o.BaseEndpoint = aws.String(opts.Endpoint)
		}
	})

	return NewWithClient(client, tables), nil
}

// NewWithClient wraps an existing client.
func NewWithClient(client API, tables snapvault.Tables) *database {
	return &database{client: client, tables: tables}
}

// Ping verifies the endpoint answers with the configured credentials.
func (d *database) Ping(ctx context.Context) error {
	if _, err := d.client.ListTables(ctx, &ddb.ListTablesInput{Limit: aws.Int32(1)}); err != nil {
		return fmt.Errorf("ping dynamodb: %w", err)
	}
	return nil
}

// Migrate creates the photos table with its indexes when it does not exist
// and waits until it is active.
func (d *database) Migrate(ctx context.Context) error {
	exists, err := d.tableExists(ctx)
	if err != nil {
		return fmt.Errorf("migrate: %w", err)
	}
	if exists {
		return nil
	}

	_, err = d.client.CreateTable(ctx, createTableInput(d.tables.Photos))
	if err != nil {
		var inUse *types.ResourceInUseException
		if !errors.As(err, &inUse) {
			return fmt.Errorf("migrate: create table %s: %w", d.tables.Photos, err)
		}
	}

	waiter := ddb.NewTableExistsWaiter(d.client)
	if err := waiter.Wait(ctx, &ddb.DescribeTableInput{TableName: aws.String(d.tables.Photos)}, tableActiveTimeout); err != nil {
		return fmt.Errorf("migrate: wait for table %s: %w", d.tables.Photos, err)
	}

	return nil
}

// Validate checks the table key schema and both owner indexes.
func (d *database) Validate(ctx context.Context) error {
	out, err := d.client.DescribeTable(ctx, &ddb.DescribeTableInput{TableName: aws.String(d.tables.Photos)})
	if err != nil {
		return fmt.Errorf("validate schema %s: %w", d.tables.Photos, err)
	}

	if err := validateTable(out.Table); err != nil {
		return fmt.Errorf("validate schema %s: %w", d.tables.Photos, err)
	}

	return nil
}

// GetRepo returns the MetaDataRepo for database operations.
func (d *database) GetRepo() snapvault.MetaDataRepo {
	return &repo{client: d.client, tableName: d.tables.Photos}
}

// Close is a no-op; the SDK client holds no connections that need closing.
func (d *database) Close() error {
	return nil
}

func (d *database) tableExists(ctx context.Context) (bool, error) {
	_, err := d.client.DescribeTable(ctx, &ddb.DescribeTableInput{TableName: aws.String(d.tables.Photos)})
	if err != nil {
		var notFound *types.ResourceNotFoundException
		if errors.As(err, &notFound) {
			return false, nil
		}
		return false, fmt.Errorf("describe table %s: %w", d.tables.Photos, err)
	}
	return true, nil
}

func createTableInput(tableName string) *ddb.CreateTableInput {
	stringAttr := func(name string) types.AttributeDefinition {
		return types.AttributeDefinition{AttributeName: aws.String(name), AttributeType: types.ScalarAttributeTypeS}
	}
	keys := func(hash, rng string) []types.KeySchemaElement {
		return []types.KeySchemaElement{
			{AttributeName: aws.String(hash), KeyType: types.KeyTypeHash},
			{AttributeName: aws.String(rng), KeyType: types.KeyTypeRange},
		}
	}

	return &ddb.CreateTableInput{
		TableName:   aws.String(tableName),
		BillingMode: types.BillingModePayPerRequest,
		AttributeDefinitions: []types.AttributeDefinition{
			stringAttr("photo_id"),
			stringAttr("user_id"),
			stringAttr("user_version"),
			stringAttr("created_key"),
		},
		KeySchema: []types.KeySchemaElement{
			{AttributeName: aws.String("photo_id"), KeyType: types.KeyTypeHash},
		},
		GlobalSecondaryIndexes: []types.GlobalSecondaryIndex{
			{
				IndexName:  aws.String(UserIDIndex),
				KeySchema:  keys("user_id", "created_key"),
				Projection: &types.Projection{ProjectionType: types.ProjectionTypeAll},
			},
			{
				IndexName:  aws.String(UserVersionIndex),
				KeySchema:  keys("user_version", "created_key"),
				Projection: &types.Projection{ProjectionType: types.ProjectionTypeAll},
			},
		},
	}
}

func validateTable(table *types.TableDescription) error {
	if table == nil {
		return errors.New("empty table description")
	}

	if len(table.KeySchema) != 1 || aws.ToString(table.KeySchema[0].AttributeName) != "photo_id" {
		return errors.New("table must be keyed by photo_id only")
	}

	expected := map[string][2]string{
		UserIDIndex:      {"user_id", "created_key"},
		UserVersionIndex: {"user_version", "created_key"},
	}

	for _, gsi := range table.GlobalSecondaryIndexes {
		name := aws.ToString(gsi.IndexName)
		want, ok := expected[name]
		if !ok {
			continue
		}

		var hash, rng string
		for _, k := range gsi.KeySchema {
			switch k.KeyType {
			case types.KeyTypeHash:
				hash = aws.ToString(k.AttributeName)
			case types.KeyTypeRange:
				rng = aws.ToString(k.AttributeName)
			}
		}

		if hash != want[0] || rng != want[1] {
			return fmt.Errorf("index %s: expected (%s, %s), got (%s, %s)", name, want[0], want[1], hash, rng)
		}
		if gsi.Projection == nil || gsi.Projection.ProjectionType != types.ProjectionTypeAll {
			return fmt.Errorf("index %s: projection must be ALL", name)
		}

		delete(expected, name)
	}

	for name := range expected {
		return fmt.Errorf("missing index %s", name)
	}

	return nil
}
