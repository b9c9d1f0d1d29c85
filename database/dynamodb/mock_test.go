package dynamodb_test

import (
	"context"

	ddb "github.com/aws/aws-sdk-go-v2/service/dynamodb"
	"github.com/stretchr/testify/mock"
)

type MockAPI struct {
	mock.Mock
}

func (m *MockAPI) GetItem(ctx context.Context, params *ddb.GetItemInput, _ ...func(*ddb.Options)) (*ddb.GetItemOutput, error) {
	args := m.Called(ctx, params)
	out, _ := args.Get(0).(*ddb.GetItemOutput)
	return out, args.Error(1)
}

func (m *MockAPI) PutItem(ctx context.Context, params *ddb.PutItemInput, _ ...func(*ddb.Options)) (*ddb.PutItemOutput, error) {
	args := m.Called(ctx, params)
	out, _ := args.Get(0).(*ddb.PutItemOutput)
	return out, args.Error(1)
}

func (m *MockAPI) UpdateItem(ctx context.Context, params *ddb.UpdateItemInput, _ ...func(*ddb.Options)) (*ddb.UpdateItemOutput, error) {
	args := m.Called(ctx, params)
	out, _ := args.Get(0).(*ddb.UpdateItemOutput)
	return out, args.Error(1)
}

func (m *MockAPI) DeleteItem(ctx context.Context, params *ddb.DeleteItemInput, _ ...func(*ddb.Options)) (*ddb.DeleteItemOutput, error) {
	args := m.Called(ctx, params)
	out, _ := args.Get(0).(*ddb.DeleteItemOutput)
	return out, args.Error(1)
}

func (m *MockAPI) Query(ctx context.Context, params *ddb.QueryInput, _ ...func(*ddb.Options)) (*ddb.QueryOutput, error) {
	args := m.Called(ctx, params)
	out, _ := args.Get(0).(*ddb.QueryOutput)
	return out, args.Error(1)
}

func (m *MockAPI) CreateTable(ctx context.Context, params *ddb.CreateTableInput, _ ...func(*ddb.Options)) (*ddb.CreateTableOutput, error) {
	args := m.Called(ctx, params)
	out, _ := args.Get(0).(*ddb.CreateTableOutput)
	return out, args.Error(1)
}

func (m *MockAPI) DescribeTable(ctx context.Context, params *ddb.DescribeTableInput, _ ...func(*ddb.Options)) (*ddb.DescribeTableOutput, error) {
	args := m.Called(ctx, params)
	out, _ := args.Get(0).(*ddb.DescribeTableOutput)
	return out, args.Error(1)
}

func (m *MockAPI) ListTables(ctx context.Context, params *ddb.ListTablesInput, _ ...func(*ddb.Options)) (*ddb.ListTablesOutput, error) {
	args := m.Called(ctx, params)
	out, _ := args.Get(0).(*ddb.ListTablesOutput)
	return out, args.Error(1)
}
