package main

import (
	"bytes"
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"bazaar/internal/domain"
	"bazaar/internal/search"
)

func TestAwaitOutcomeSkipsOtherQueries(t *testing.T) {
	outcomes := make(chan search.Outcome, 3)
	outcomes <- search.Outcome{ID: 1, Query: "", Kind: search.OutcomeEmpty}
	outcomes <- search.Outcome{ID: 2, Query: "lam", Kind: search.OutcomeEmpty}
	outcomes <- search.Outcome{ID: 3, Query: "lamp", Kind: search.OutcomeItems}

	o, err := awaitOutcome(context.Background(), outcomes, "lamp")
	require.NoError(t, err)
	assert.Equal(t, search.RequestID(3), o.ID)
}

func TestAwaitOutcomeTimesOut(t *testing.T) {
	ctx, cancel := context.WithTimeout(context.Background(), 20*time.Millisecond)
	defer cancel()

	_, err := awaitOutcome(ctx, make(chan search.Outcome), "lamp")
	assert.ErrorContains(t, err, `no result for "lamp"`)
}

func TestPrintOutcome(t *testing.T) {
	var buf bytes.Buffer
	err := printOutcome(&buf, search.Outcome{
		Query: "cap",
		Kind:  search.OutcomeItems,
		Items: []domain.Listing{
			{Title: "Wool flat cap", Category: "clothing", PriceCents: 2500, Seller: "bruno"},
		},
		Elapsed: 12 * time.Millisecond,
	})
	require.NoError(t, err)
	out := buf.String()
	assert.Contains(t, out, "TITLE")
	assert.Contains(t, out, "Wool flat cap")
	assert.Contains(t, out, "25.00 USD")
	assert.Contains(t, out, `1 results for "cap"`)

	buf.Reset()
	require.NoError(t, printOutcome(&buf, search.Outcome{Query: "zzz", Kind: search.OutcomeEmpty}))
	assert.Equal(t, "No results for \"zzz\"\n", buf.String())

	boom := errors.New("catalog locked")
	err = printOutcome(&buf, search.Outcome{Query: "cap", Kind: search.OutcomeFailure, Err: boom})
	assert.ErrorIs(t, err, boom)
}
