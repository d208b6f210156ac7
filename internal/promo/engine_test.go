package promo

import (
	"context"
	"errors"
	"testing"
	"time"

	"compucar-promo/internal/model"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

// MockStore is a mock implementation of Store.
type MockStore struct {
	mock.Mock
}

func (m *MockStore) GetByCode(ctx context.Context, code string) (*model.PromoCode, error) {
	args := m.Called(ctx, code)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.PromoCode), args.Error(1)
}

func (m *MockStore) CountUserRedemptions(ctx context.Context, codeID uuid.UUID, userID string) (int, error) {
	args := m.Called(ctx, codeID, userID)
	return args.Int(0), args.Error(1)
}

func dec(s string) decimal.Decimal {
	return decimal.RequireFromString(s)
}

func intPtr(v int) *int {
	return &v
}

func decPtr(s string) *decimal.Decimal {
	d := dec(s)
	return &d
}

func timePtr(t time.Time) *time.Time {
	return &t
}

var testNow = time.Date(2026, 8, 1, 12, 0, 0, 0, time.UTC)

// newTestValidator builds a validator with a fixed clock.
func newTestValidator(store Store) *engine {
	return &engine{
		store:  store,
		logger: zerolog.Nop(),
		now:    func() time.Time { return testNow },
	}
}

// testPromo returns an unrestricted active percentage code.
func testPromo() *model.PromoCode {
	return &model.PromoCode{
		ID:              uuid.New(),
		Code:            "SAVE10",
		DiscountType:    model.DiscountPercentage,
		DiscountValue:   dec("10"),
		MaxRedemptions:  intPtr(100),
		RedemptionCount: 5,
		IsActive:        true,
	}
}

func testItems() []model.CartItem {
	return []model.CartItem{
		{ProductID: "P001", CategoryID: "C001", Price: dec("50.00"), Quantity: 2},
		{ProductID: "P002", CategoryID: "C002", Price: dec("100.00"), Quantity: 1},
	}
}

func TestValidate_PercentageDiscount(t *testing.T) {
	store := new(MockStore)
	store.On("GetByCode", mock.Anything, "SAVE10").Return(testPromo(), nil)

	v := newTestValidator(store)

	result, err := v.Validate(context.Background(), "save10", "U1", testItems(), dec("200.00"))

	require.NoError(t, err)
	assert.True(t, result.Valid)
	assert.Equal(t, "SAVE10", result.Code)
	assert.True(t, result.DiscountAmount.Equal(dec("20.00")), "got %s", result.DiscountAmount)
	store.AssertExpectations(t)
}

func TestValidate_FixedDiscountClamped(t *testing.T) {
	p := testPromo()
	p.Code = "FIXED20"
	p.DiscountType = model.DiscountFixed
	p.DiscountValue = dec("20.00")
	p.MaxRedemptions = nil

	store := new(MockStore)
	store.On("GetByCode", mock.Anything, "FIXED20").Return(p, nil)

	v := newTestValidator(store)

	items := []model.CartItem{
		{ProductID: "P001", CategoryID: "C001", Price: dec("15.00"), Quantity: 1},
	}
	result, err := v.Validate(context.Background(), "FIXED20", "U1", items, dec("15.00"))

	require.NoError(t, err)
	assert.True(t, result.Valid)
	assert.True(t, result.DiscountAmount.Equal(dec("15.00")), "fixed discount must clamp to subtotal, got %s", result.DiscountAmount)
}

func TestValidate_Rejections(t *testing.T) {
	tests := []struct {
		name     string
		promo    func() *model.PromoCode
		subtotal string
		reason   model.InvalidReason
	}{
		{
			name: "inactive code",
			promo: func() *model.PromoCode {
				p := testPromo()
				p.IsActive = false
				return p
			},
			subtotal: "200.00",
			reason:   model.ReasonInactive,
		},
		{
			name: "expired code",
			promo: func() *model.PromoCode {
				p := testPromo()
				p.ExpiresAt = timePtr(testNow.Add(-time.Hour))
				return p
			},
			subtotal: "200.00",
			reason:   model.ReasonExpired,
		},
		{
			name: "not yet valid code",
			promo: func() *model.PromoCode {
				p := testPromo()
				p.StartsAt = timePtr(testNow.Add(time.Hour))
				return p
			},
			subtotal: "200.00",
			reason:   model.ReasonNotYetValid,
		},
		{
			name: "minimum not met",
			promo: func() *model.PromoCode {
				p := testPromo()
				p.MinimumSubtotal = decPtr("250.00")
				return p
			},
			subtotal: "200.00",
			reason:   model.ReasonBelowMinimum,
		},
		{
			name: "restriction misses cart",
			promo: func() *model.PromoCode {
				p := testPromo()
				p.ProductIDs = []string{"P999"}
				p.CategoryIDs = []string{"C999"}
				return p
			},
			subtotal: "200.00",
			reason:   model.ReasonNotApplicable,
		},
		{
			name: "global limit reached",
			promo: func() *model.PromoCode {
				p := testPromo()
				p.MaxRedemptions = intPtr(1)
				p.RedemptionCount = 1
				return p
			},
			subtotal: "200.00",
			reason:   model.ReasonGlobalLimit,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			p := tt.promo()
			store := new(MockStore)
			store.On("GetByCode", mock.Anything, p.Code).Return(p, nil)

			v := newTestValidator(store)

			result, err := v.Validate(context.Background(), p.Code, "U1", testItems(), dec(tt.subtotal))

			require.NoError(t, err)
			assert.False(t, result.Valid)
			assert.Equal(t, tt.reason, result.Reason)
		})
	}
}

func TestValidate_CodeNotFound(t *testing.T) {
	store := new(MockStore)
	store.On("GetByCode", mock.Anything, "MISSING").Return(nil, nil)

	v := newTestValidator(store)

	result, err := v.Validate(context.Background(), "missing", "U1", testItems(), dec("200.00"))

	require.NoError(t, err)
	assert.False(t, result.Valid)
	assert.Equal(t, model.ReasonNotFound, result.Reason)
}

func TestValidate_PerUserLimit(t *testing.T) {
	p := testPromo()
	p.PerUserLimit = intPtr(1)

	tests := []struct {
		name      string
		used      int
		wantValid bool
	}{
		{name: "first use allowed", used: 0, wantValid: true},
		{name: "second use rejected", used: 1, wantValid: false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			store := new(MockStore)
			store.On("GetByCode", mock.Anything, "SAVE10").Return(p, nil)
			store.On("CountUserRedemptions", mock.Anything, p.ID, "U1").Return(tt.used, nil)

			v := newTestValidator(store)

			result, err := v.Validate(context.Background(), "SAVE10", "U1", testItems(), dec("200.00"))

			require.NoError(t, err)
			assert.Equal(t, tt.wantValid, result.Valid)
			if !tt.wantValid {
				assert.Equal(t, model.ReasonUserLimit, result.Reason)
			}
		})
	}
}

func TestValidate_PerUserCheckSkippedWhenUnlimited(t *testing.T) {
	store := new(MockStore)
	store.On("GetByCode", mock.Anything, "SAVE10").Return(testPromo(), nil)

	v := newTestValidator(store)

	_, err := v.Validate(context.Background(), "SAVE10", "U1", testItems(), dec("200.00"))

	require.NoError(t, err)
	store.AssertNotCalled(t, "CountUserRedemptions", mock.Anything, mock.Anything, mock.Anything)
}

func TestValidate_RestrictionMatchesSingleItem(t *testing.T) {
	p := testPromo()
	p.CategoryIDs = []string{"C002"}

	store := new(MockStore)
	store.On("GetByCode", mock.Anything, "SAVE10").Return(p, nil)

	v := newTestValidator(store)

	result, err := v.Validate(context.Background(), "SAVE10", "U1", testItems(), dec("200.00"))

	require.NoError(t, err)
	assert.True(t, result.Valid, "one matching item is enough")
}

func TestValidate_InvalidInput(t *testing.T) {
	tests := []struct {
		name     string
		code     string
		userID   string
		items    []model.CartItem
		subtotal decimal.Decimal
	}{
		{name: "empty code", code: "", userID: "U1", items: testItems(), subtotal: dec("200.00")},
		{name: "blank code", code: "   ", userID: "U1", items: testItems(), subtotal: dec("200.00")},
		{name: "empty user", code: "SAVE10", userID: "", items: testItems(), subtotal: dec("200.00")},
		{name: "empty cart", code: "SAVE10", userID: "U1", items: nil, subtotal: dec("200.00")},
		{name: "zero subtotal", code: "SAVE10", userID: "U1", items: testItems(), subtotal: decimal.Zero},
		{name: "negative subtotal", code: "SAVE10", userID: "U1", items: testItems(), subtotal: dec("-10.00")},
		{
			name:   "zero quantity item",
			code:   "SAVE10",
			userID: "U1",
			items: []model.CartItem{
				{ProductID: "P001", CategoryID: "C001", Price: dec("10.00"), Quantity: 0},
			},
			subtotal: dec("10.00"),
		},
		{
			name:   "non-positive price",
			code:   "SAVE10",
			userID: "U1",
			items: []model.CartItem{
				{ProductID: "P001", CategoryID: "C001", Price: decimal.Zero, Quantity: 1},
			},
			subtotal: dec("10.00"),
		},
		{
			name:     "subtotal exceeds cart total",
			code:     "SAVE10",
			userID:   "U1",
			items:    testItems(),
			subtotal: dec("500.00"),
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			store := new(MockStore)
			v := newTestValidator(store)

			_, err := v.Validate(context.Background(), tt.code, tt.userID, tt.items, tt.subtotal)

			assert.ErrorIs(t, err, model.ErrInvalidInput)
			store.AssertNotCalled(t, "GetByCode", mock.Anything, mock.Anything)
		})
	}
}

func TestValidate_StoreError(t *testing.T) {
	store := new(MockStore)
	store.On("GetByCode", mock.Anything, "SAVE10").Return(nil, errors.New("connection refused"))

	v := newTestValidator(store)

	_, err := v.Validate(context.Background(), "SAVE10", "U1", testItems(), dec("200.00"))

	require.Error(t, err)
	assert.NotErrorIs(t, err, model.ErrInvalidInput)
}

func TestValidate_Idempotent(t *testing.T) {
	store := new(MockStore)
	store.On("GetByCode", mock.Anything, "SAVE10").Return(testPromo(), nil)

	v := newTestValidator(store)

	first, err := v.Validate(context.Background(), "SAVE10", "U1", testItems(), dec("200.00"))
	require.NoError(t, err)

	for i := 0; i < 5; i++ {
		again, err := v.Validate(context.Background(), "SAVE10", "U1", testItems(), dec("200.00"))
		require.NoError(t, err)
		assert.Equal(t, first.Valid, again.Valid)
		assert.True(t, first.DiscountAmount.Equal(again.DiscountAmount))
	}
}

func TestDiscount(t *testing.T) {
	tests := []struct {
		name         string
		discountType model.DiscountType
		value        string
		subtotal     string
		want         string
	}{
		{name: "ten percent", discountType: model.DiscountPercentage, value: "10", subtotal: "200.00", want: "20.00"},
		{name: "percentage rounds to cents", discountType: model.DiscountPercentage, value: "15", subtotal: "99.99", want: "15.00"},
		{name: "full percentage", discountType: model.DiscountPercentage, value: "100", subtotal: "42.50", want: "42.50"},
		{name: "overshooting percentage clamps", discountType: model.DiscountPercentage, value: "150", subtotal: "100.00", want: "100.00"},
		{name: "fixed below subtotal", discountType: model.DiscountFixed, value: "20.00", subtotal: "100.00", want: "20.00"},
		{name: "fixed above subtotal clamps", discountType: model.DiscountFixed, value: "20.00", subtotal: "15.00", want: "15.00"},
		{name: "fixed equals subtotal", discountType: model.DiscountFixed, value: "15.00", subtotal: "15.00", want: "15.00"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			p := &model.PromoCode{
				DiscountType:  tt.discountType,
				DiscountValue: dec(tt.value),
			}

			got := Discount(p, dec(tt.subtotal))

			assert.True(t, got.Equal(dec(tt.want)), "want %s, got %s", tt.want, got)
			assert.False(t, got.IsNegative())
			assert.True(t, got.LessThanOrEqual(dec(tt.subtotal)))
		})
	}
}

func TestNormalizeCode(t *testing.T) {
	assert.Equal(t, "SAVE10", NormalizeCode("  save10 "))
	assert.Equal(t, "SAVE10", NormalizeCode("Save10"))
	assert.Equal(t, "", NormalizeCode("   "))
}
