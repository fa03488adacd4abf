package services

import (
	"context"
	"sort"
	"sync"
	"testing"

	"github.com/aws/aws-sdk-go-v2/feature/dynamodb/attributevalue"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb/types"
)

// fakeDynamoClient is a scripted stand-in for the DynamoDB client: tests
// queue per-key GetItem responses and query pages, and assert on the
// captured write inputs.
type fakeDynamoClient struct {
	t  *testing.T
	mu sync.Mutex

	getResponses   map[string][]map[string]types.AttributeValue
	queryResponses []*dynamodb.QueryOutput
	scanItems      map[string][]map[string]types.AttributeValue

	puts        []*dynamodb.PutItemInput
	updates     []*dynamodb.UpdateItemInput
	deletes     []*dynamodb.DeleteItemInput
	batchWrites []*dynamodb.BatchWriteItemInput
	transacts   []*dynamodb.TransactWriteItemsInput

	updateErrAt  int // 1-based index of the UpdateItem call that fails; 0 = never
	updateErr    error
	transactErrs []error // popped per TransactWriteItems call; nil entry = success
}

func newFakeDynamo(t *testing.T) *fakeDynamoClient {
	return &fakeDynamoClient{
		t:            t,
		getResponses: map[string][]map[string]types.AttributeValue{},
		scanItems:    map[string][]map[string]types.AttributeValue{},
	}
}

func keyString(table string, key map[string]types.AttributeValue) string {
	names := make([]string, 0, len(key))
	for name := range key {
		names = append(names, name)
	}
	sort.Strings(names)
	out := table
	for _, name := range names {
		if s, ok := key[name].(*types.AttributeValueMemberS); ok {
			out += "|" + name + "=" + s.Value
		}
	}
	return out
}

// stubItem queues one GetItem response for the given key. item may be a
// struct (marshalled) or nil for "absent".
func (f *fakeDynamoClient) stubItem(table string, key map[string]string, item interface{}) {
	f.t.Helper()
	av := map[string]types.AttributeValue{}
	for name, value := range key {
		av[name] = &types.AttributeValueMemberS{Value: value}
	}
	var marshalled map[string]types.AttributeValue
	if item != nil {
		var err error
		marshalled, err = attributevalue.MarshalMap(item)
		if err != nil {
			f.t.Fatalf("failed to marshal stub item: %v", err)
		}
	}
	ks := keyString(table, av)
	f.getResponses[ks] = append(f.getResponses[ks], marshalled)
}

// stubQueryPage queues one Query response.
func (f *fakeDynamoClient) stubQueryPage(items []map[string]types.AttributeValue, lastKey map[string]types.AttributeValue) {
	f.queryResponses = append(f.queryResponses, &dynamodb.QueryOutput{
		Items:            items,
		LastEvaluatedKey: lastKey,
	})
}

func (f *fakeDynamoClient) GetItem(ctx context.Context, params *dynamodb.GetItemInput, optFns ...func(*dynamodb.Options)) (*dynamodb.GetItemOutput, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	ks := keyString(*params.TableName, params.Key)
	queue := f.getResponses[ks]
	if len(queue) == 0 {
		return &dynamodb.GetItemOutput{}, nil
	}
	item := queue[0]
	f.getResponses[ks] = queue[1:]
	return &dynamodb.GetItemOutput{Item: item}, nil
}

func (f *fakeDynamoClient) PutItem(ctx context.Context, params *dynamodb.PutItemInput, optFns ...func(*dynamodb.Options)) (*dynamodb.PutItemOutput, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.puts = append(f.puts, params)
	return &dynamodb.PutItemOutput{}, nil
}

func (f *fakeDynamoClient) UpdateItem(ctx context.Context, params *dynamodb.UpdateItemInput, optFns ...func(*dynamodb.Options)) (*dynamodb.UpdateItemOutput, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.updates = append(f.updates, params)
	if f.updateErrAt > 0 && len(f.updates) == f.updateErrAt {
		return nil, f.updateErr
	}
	return &dynamodb.UpdateItemOutput{Attributes: map[string]types.AttributeValue{}}, nil
}

func (f *fakeDynamoClient) DeleteItem(ctx context.Context, params *dynamodb.DeleteItemInput, optFns ...func(*dynamodb.Options)) (*dynamodb.DeleteItemOutput, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.deletes = append(f.deletes, params)
	return &dynamodb.DeleteItemOutput{}, nil
}

func (f *fakeDynamoClient) Query(ctx context.Context, params *dynamodb.QueryInput, optFns ...func(*dynamodb.Options)) (*dynamodb.QueryOutput, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if len(f.queryResponses) == 0 {
		return &dynamodb.QueryOutput{}, nil
	}
	out := f.queryResponses[0]
	f.queryResponses = f.queryResponses[1:]
	return out, nil
}

func (f *fakeDynamoClient) Scan(ctx context.Context, params *dynamodb.ScanInput, optFns ...func(*dynamodb.Options)) (*dynamodb.ScanOutput, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	return &dynamodb.ScanOutput{Items: f.scanItems[*params.TableName]}, nil
}

func (f *fakeDynamoClient) BatchWriteItem(ctx context.Context, params *dynamodb.BatchWriteItemInput, optFns ...func(*dynamodb.Options)) (*dynamodb.BatchWriteItemOutput, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.batchWrites = append(f.batchWrites, params)
	return &dynamodb.BatchWriteItemOutput{}, nil
}

func (f *fakeDynamoClient) TransactWriteItems(ctx context.Context, params *dynamodb.TransactWriteItemsInput, optFns ...func(*dynamodb.Options)) (*dynamodb.TransactWriteItemsOutput, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.transacts = append(f.transacts, params)
	if len(f.transactErrs) > 0 {
		err := f.transactErrs[0]
		f.transactErrs = f.transactErrs[1:]
		if err != nil {
			return nil, err
		}
	}
	return &dynamodb.TransactWriteItemsOutput{}, nil
}

func conditionFailedUpdateErr() error {
	return &types.ConditionalCheckFailedException{}
}

// conditionFailedTransactErr builds the error shape the SDK returns when a
// condition inside a transaction fails.
func conditionFailedTransactErr() error {
	code := "ConditionalCheckFailed"
	return &types.TransactionCanceledException{
		CancellationReasons: []types.CancellationReason{{Code: &code}},
	}
}

func avString(av map[string]types.AttributeValue, field string) string {
	if v, ok := av[field].(*types.AttributeValueMemberS); ok {
		return v.Value
	}
	return ""
}

func avNumber(av map[string]types.AttributeValue, field string) string {
	if v, ok := av[field].(*types.AttributeValueMemberN); ok {
		return v.Value
	}
	return ""
}

func avBool(av map[string]types.AttributeValue, field string) bool {
	if v, ok := av[field].(*types.AttributeValueMemberBOOL); ok {
		return v.Value
	}
	return false
}
