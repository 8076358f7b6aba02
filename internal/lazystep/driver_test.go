package lazystep

import (
	"context"
	"encoding/json"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zaptest"

	"github.com/munin/poi-pipeline/internal/searchclient"
	"github.com/munin/poi-pipeline/internal/searchclient/searchtest"
)

func stepForKey(key int) LazyStep[int] {
	header, _ := json.Marshal(map[string]int{"key": key})
	return Need[int](header, header, func(hits []searchclient.Hit) LazyStep[int] {
		return Ready(key * 10)
	})
}

func TestDriveResolvesAllStepsInOrder(t *testing.T) {
	client := searchtest.New()
	steps := []LazyStep[int]{Ready(1), stepForKey(2), Ready(3), stepForKey(4)}

	out, err := Drive(context.Background(), zaptest.NewLogger(t), client, steps, 10)
	require.NoError(t, err)
	assert.Equal(t, []int{1, 20, 3, 40}, out)
}

func TestDriveBatchesAcrossMultipleCalls(t *testing.T) {
	client := searchtest.New()

	const total = 1500
	const pending = 1200
	steps := make([]LazyStep[int], total)
	for i := 0; i < total; i++ {
		if i < pending {
			steps[i] = stepForKey(i)
		} else {
			steps[i] = Ready(i)
		}
	}

	out, err := Drive(context.Background(), nil, client, steps, 600)
	require.NoError(t, err)
	require.Len(t, out, total)
	assert.Equal(t, 2, client.Calls)
	assert.Equal(t, []int{600, 600}, client.BatchSizes)
}

func TestDriveSingleCallWhenBatchSizeCoversEverything(t *testing.T) {
	client := searchtest.New()

	const pending = 1200
	steps := make([]LazyStep[int], pending)
	for i := range steps {
		steps[i] = stepForKey(i)
	}

	out, err := Drive(context.Background(), nil, client, steps, 10000)
	require.NoError(t, err)
	require.Len(t, out, pending)
	assert.Equal(t, 1, client.Calls)
	assert.Equal(t, []int{1200}, client.BatchSizes)
}

func TestDriveRetriesPerQueryErrorsWithoutFailing(t *testing.T) {
	key1Attempts := 0
	client := searchtest.New()
	client.Answer = func(pair searchclient.QueryPair) ([]searchclient.Hit, error) {
		var key struct{ Key int }
		_ = json.Unmarshal(pair.Header, &key)
		if key.Key == 1 {
			key1Attempts++
			if key1Attempts == 1 {
				return nil, errors.New("transient lookup error")
			}
		}
		return []searchclient.Hit{{}}, nil
	}

	steps := []LazyStep[int]{stepForKey(1), stepForKey(2)}

	// First call: key 1 errors (but key 2's hit count equals the error count
	// in that same batch call, so it isn't fatal), key 2 advances. Second
	// iteration: key 1 is retried alone and succeeds.
	out, err := Drive(context.Background(), nil, client, steps, 10)
	require.NoError(t, err)
	assert.ElementsMatch(t, []int{10, 20}, out)
	assert.Equal(t, 2, key1Attempts)
}

func TestDriveFatalWhenErrorsExceedHits(t *testing.T) {
	client := searchtest.New()
	client.Answer = func(searchclient.QueryPair) ([]searchclient.Hit, error) {
		return nil, errors.New("backend overloaded")
	}

	steps := []LazyStep[int]{stepForKey(1)}
	_, err := Drive(context.Background(), nil, client, steps, 10)
	assert.Error(t, err)
}

func TestDriveResponseLengthMismatchIsFatal(t *testing.T) {
	client := &mismatchClient{}
	steps := []LazyStep[int]{stepForKey(1), stepForKey(2)}
	_, err := Drive(context.Background(), nil, client, steps, 10)
	assert.Error(t, err)
}

type mismatchClient struct{ searchtest.Client }

func (m *mismatchClient) Multisearch(context.Context, []searchclient.QueryPair) ([]searchclient.Result, error) {
	return []searchclient.Result{{Hits: []searchclient.Hit{{}}}}, nil
}
