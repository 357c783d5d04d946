package resolver

import (
	"context"
	"errors"
	"testing"

	"github.com/golang/mock/gomock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/summit-gg/beast-indexer/internal/mocks"
	"github.com/summit-gg/beast-indexer/internal/store"
	"github.com/summit-gg/beast-indexer/internal/store/schema"
)

func TestResolveBlockEmptyInput(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	mockStore := mocks.NewMockStore(ctrl)
	r := NewContextResolver(mockStore)

	contexts, err := r.ResolveBlock(context.Background(), nil)
	require.NoError(t, err)
	assert.Empty(t, contexts)
}

func TestResolveBlockPrimaryHit(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	mockStore := mocks.NewMockStore(ctrl)
	r := NewContextResolver(mockStore)

	beast := &schema.Beast{TokenID: 1, BeastID: 42}
	mockStore.EXPECT().
		GetBeastContexts(gomock.Any(), []uint64{1}).
		Return([]store.BeastContextRow{
			{
				Stats:    schema.BeastStats{TokenID: 1, Spirit: 5, CurrentHealth: 80},
				Beast:    beast,
				Owner:    "0xowner",
				HasBeast: true,
			},
		}, nil)

	contexts, err := r.ResolveBlock(context.Background(), []uint64{1})
	require.NoError(t, err)
	require.Len(t, contexts, 1)

	ctx := contexts[1]
	require.NotNil(t, ctx.PrevStats)
	assert.Equal(t, uint16(5), ctx.PrevStats.Spirit)
	assert.Equal(t, uint16(80), ctx.PrevStats.CurrentHealth)
	assert.Equal(t, beast, ctx.Metadata)
	assert.Equal(t, "0xowner", ctx.Owner)
}

func TestResolveBlockFallbackForMissingStats(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	mockStore := mocks.NewMockStore(ctrl)
	r := NewContextResolver(mockStore)

	beast := &schema.Beast{TokenID: 2, BeastID: 7}
	mockStore.EXPECT().
		GetBeastContexts(gomock.Any(), []uint64{1, 2}).
		Return([]store.BeastContextRow{
			{Stats: schema.BeastStats{TokenID: 1}, Owner: "0xa"},
		}, nil)
	mockStore.EXPECT().
		GetBeastsWithOwners(gomock.Any(), []uint64{2}).
		Return([]store.BeastFallbackRow{
			{TokenID: 2, Beast: beast, Owner: "0xb"},
		}, nil)

	contexts, err := r.ResolveBlock(context.Background(), []uint64{1, 2})
	require.NoError(t, err)
	require.Len(t, contexts, 2)

	// Token 2 came from the fallback pass: metadata but no prior snapshot.
	assert.Nil(t, contexts[2].PrevStats)
	assert.Equal(t, beast, contexts[2].Metadata)
	assert.Equal(t, "0xb", contexts[2].Owner)
}

func TestResolveBlockUnknownTokensGetEmptyContext(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	mockStore := mocks.NewMockStore(ctrl)
	r := NewContextResolver(mockStore)

	mockStore.EXPECT().
		GetBeastContexts(gomock.Any(), []uint64{99}).
		Return([]store.BeastContextRow{}, nil)
	mockStore.EXPECT().
		GetBeastsWithOwners(gomock.Any(), []uint64{99}).
		Return([]store.BeastFallbackRow{}, nil)

	contexts, err := r.ResolveBlock(context.Background(), []uint64{99})
	require.NoError(t, err)
	require.Len(t, contexts, 1)

	ctx := contexts[99]
	assert.Equal(t, uint64(99), ctx.TokenID)
	assert.Nil(t, ctx.PrevStats)
	assert.Nil(t, ctx.Metadata)
	assert.Empty(t, ctx.Owner)
}

func TestResolveBlockPrimaryError(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	mockStore := mocks.NewMockStore(ctrl)
	r := NewContextResolver(mockStore)

	mockStore.EXPECT().
		GetBeastContexts(gomock.Any(), []uint64{1}).
		Return(nil, errors.New("connection lost"))

	contexts, err := r.ResolveBlock(context.Background(), []uint64{1})
	assert.Error(t, err)
	assert.Nil(t, contexts)
}

func TestResolveBlockFallbackError(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	mockStore := mocks.NewMockStore(ctrl)
	r := NewContextResolver(mockStore)

	mockStore.EXPECT().
		GetBeastContexts(gomock.Any(), []uint64{1}).
		Return([]store.BeastContextRow{}, nil)
	mockStore.EXPECT().
		GetBeastsWithOwners(gomock.Any(), []uint64{1}).
		Return(nil, errors.New("connection lost"))

	contexts, err := r.ResolveBlock(context.Background(), []uint64{1})
	assert.Error(t, err)
	assert.Nil(t, contexts)
}

func TestStatsRoundTrip(t *testing.T) {
	row := schema.BeastStats{
		TokenID:           5,
		CurrentHealth:     100,
		BonusHealth:       20,
		Spirit:            3,
		Luck:              4,
		ExtraLives:        1,
		MaxAttackStreak:   9,
		RewardsEarned:     1000,
		RewardsClaimed:    500,
		SpecialsUnlocked:  true,
		CapturedSummit:    true,
		UsedAttackPotion:  true,
		UsedRevivalPotion: false,
	}

	stats := statsFromRow(row)
	back := RowFromStats(stats, 777)

	row.BlockNumber = 777
	assert.Equal(t, row, back)
}
