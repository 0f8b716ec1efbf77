package cart

import (
	"context"
	"encoding/json"
	"errors"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"
)

type fakeSubmitter struct {
	calls [][]LineItem
	resp  Confirmation
	err   error
}

func (f *fakeSubmitter) SubmitCheckout(ctx context.Context, items []LineItem) (Confirmation, error) {
	f.calls = append(f.calls, items)
	if f.err != nil {
		return nil, f.err
	}
	return f.resp, nil
}

func money(v int64) decimal.Decimal {
	return decimal.NewFromInt(v)
}

func sumOf(items []LineItem) decimal.Decimal {
	total := decimal.Zero
	for _, it := range items {
		total = total.Add(it.Price.Mul(decimal.NewFromInt(int64(it.Quantity))))
	}
	return total
}

func TestNewCartIsEmpty(t *testing.T) {
	c := New(nil, nil)

	if len(c.Items()) != 0 {
		t.Fatalf("expected no items, got %d", len(c.Items()))
	}
	if !c.Total().IsZero() {
		t.Fatalf("expected zero total, got %s", c.Total())
	}
}

func TestAddItem(t *testing.T) {
	t.Run("inserts new line with quantity one", func(t *testing.T) {
		c := New(nil, nil)
		require.NoError(t, c.AddItem(ProductSnapshot{ID: 1, Price: money(100), Stock: 5}))

		items := c.Items()
		require.Len(t, items, 1)
		assert.Equal(t, int64(1), items[0].ID)
		assert.Equal(t, 1, items[0].Quantity)
		assert.True(t, c.Total().Equal(money(100)))
	})

	t.Run("increments existing line", func(t *testing.T) {
		c := New(nil, nil)
		p := ProductSnapshot{ID: 1, Price: money(100), Stock: 5}
		require.NoError(t, c.AddItem(p))
		require.NoError(t, c.AddItem(p))

		items := c.Items()
		require.Len(t, items, 1)
		assert.Equal(t, 2, items[0].Quantity)
		assert.True(t, c.Total().Equal(money(200)))
	})

	t.Run("stops at stock ceiling", func(t *testing.T) {
		c := New(nil, nil)
		p := ProductSnapshot{ID: 1, Price: money(100), Stock: 2}
		require.NoError(t, c.AddItem(p))
		require.NoError(t, c.AddItem(p))

		err := c.AddItem(p)
		require.ErrorIs(t, err, ErrStockLimit)

		var limitErr *StockLimitError
		require.ErrorAs(t, err, &limitErr)
		assert.Equal(t, 2, limitErr.Stock)
		assert.Equal(t, "cannot add more than 2 units of product 1", limitErr.Error())

		items := c.Items()
		require.Len(t, items, 1)
		assert.Equal(t, 2, items[0].Quantity)
		assert.True(t, c.Total().Equal(money(200)))
	})

	t.Run("rejects product without stock", func(t *testing.T) {
		c := New(nil, nil)
		err := c.AddItem(ProductSnapshot{ID: 7, Price: money(10), Stock: 0})

		require.ErrorIs(t, err, ErrOutOfStock)
		assert.Empty(t, c.Items())
		assert.True(t, c.Total().IsZero())
	})

	t.Run("rejects negative stock", func(t *testing.T) {
		c := New(nil, nil)
		err := c.AddItem(ProductSnapshot{ID: 7, Price: money(10), Stock: -1})

		require.ErrorIs(t, err, ErrInvalidProduct)
		assert.Empty(t, c.Items())
	})

	t.Run("uses stock captured at insertion", func(t *testing.T) {
		c := New(nil, nil)
		require.NoError(t, c.AddItem(ProductSnapshot{ID: 1, Price: money(5), Stock: 1}))

		// a later snapshot claiming more stock does not raise the ceiling
		err := c.AddItem(ProductSnapshot{ID: 1, Price: money(5), Stock: 10})
		require.ErrorIs(t, err, ErrStockLimit)
		assert.Equal(t, 1, c.Items()[0].Quantity)
	})
}

func TestAddItemNeverExceedsStock(t *testing.T) {
	for stock := 0; stock <= 6; stock++ {
		c := New(nil, nil)
		p := ProductSnapshot{ID: 42, Price: money(3), Stock: stock}
		for i := 0; i < stock+4; i++ {
			_ = c.AddItem(p)
		}

		items := c.Items()
		if stock == 0 {
			if len(items) != 0 {
				t.Fatalf("stock 0: expected empty cart, got %+v", items)
			}
			continue
		}
		if items[0].Quantity != stock {
			t.Fatalf("stock %d: expected quantity %d, got %d", stock, stock, items[0].Quantity)
		}
	}
}

func TestIncreaseDecreaseQuantity(t *testing.T) {
	newCart := func(t *testing.T) *Cart {
		t.Helper()
		c := New(nil, nil)
		require.NoError(t, c.AddItem(ProductSnapshot{ID: 1, Price: money(100), Stock: 3}))
		require.NoError(t, c.AddItem(ProductSnapshot{ID: 2, Price: money(50), Stock: 1}))
		return c
	}

	t.Run("increase within stock", func(t *testing.T) {
		c := newCart(t)
		require.NoError(t, c.IncreaseQuantity(0))
		assert.Equal(t, 2, c.Items()[0].Quantity)
		assert.True(t, c.Total().Equal(money(250)))
	})

	t.Run("increase at ceiling is refused", func(t *testing.T) {
		c := newCart(t)
		err := c.IncreaseQuantity(1)
		require.ErrorIs(t, err, ErrStockLimit)
		assert.Equal(t, 1, c.Items()[1].Quantity)
		assert.True(t, c.Total().Equal(money(150)))
	})

	t.Run("decrease stops at one", func(t *testing.T) {
		c := newCart(t)
		require.NoError(t, c.IncreaseQuantity(0))
		require.NoError(t, c.DecreaseQuantity(0))
		require.NoError(t, c.DecreaseQuantity(0))
		require.NoError(t, c.DecreaseQuantity(0))

		assert.Equal(t, 1, c.Items()[0].Quantity)
		assert.True(t, c.Total().Equal(money(150)))
	})

	t.Run("out of range index is a no-op", func(t *testing.T) {
		c := newCart(t)
		before := c.Items()

		for _, idx := range []int{-1, 2, 100} {
			assert.ErrorIs(t, c.IncreaseQuantity(idx), ErrIndexOutOfRange)
			assert.ErrorIs(t, c.DecreaseQuantity(idx), ErrIndexOutOfRange)
		}
		assert.Equal(t, before, c.Items())
	})
}

func TestRemoveItem(t *testing.T) {
	t.Run("removes line and recomputes total", func(t *testing.T) {
		c := New(nil, nil)
		require.NoError(t, c.UpdateCart([]LineItem{
			{ID: 1, Price: money(100), Quantity: 2},
			{ID: 2, Price: money(200), Quantity: 1},
		}))

		require.NoError(t, c.RemoveItem(0))

		assert.Equal(t, []LineItem{{ID: 2, Price: money(200), Quantity: 1}}, c.Items())
		assert.True(t, c.Total().Equal(money(200)))
	})

	t.Run("invalid index leaves cart unchanged and warns", func(t *testing.T) {
		core, logs := observer.New(zapcore.WarnLevel)
		c := New(nil, zap.New(core))
		require.NoError(t, c.UpdateCart([]LineItem{{ID: 1, Price: money(100), Quantity: 1}}))
		before := c.Items()

		assert.NotPanics(t, func() {
			assert.ErrorIs(t, c.RemoveItem(-1), ErrIndexOutOfRange)
			assert.ErrorIs(t, c.RemoveItem(10), ErrIndexOutOfRange)
		})

		assert.Equal(t, before, c.Items())
		assert.True(t, c.Total().Equal(money(100)))
		assert.Equal(t, 2, logs.FilterMessage("remove item: invalid index").Len())
	})
}

func TestUpdateCart(t *testing.T) {
	t.Run("replaces items and total", func(t *testing.T) {
		c := New(nil, nil)
		require.NoError(t, c.AddItem(ProductSnapshot{ID: 9, Price: money(1), Stock: 1}))

		require.NoError(t, c.UpdateCart([]LineItem{
			{ID: 1, Price: money(100), Quantity: 2},
			{ID: 2, Price: money(200), Quantity: 1},
		}))

		assert.Len(t, c.Items(), 2)
		assert.True(t, c.Total().Equal(money(400)))
	})

	t.Run("rejects duplicates and bad quantities", func(t *testing.T) {
		c := New(nil, nil)
		require.NoError(t, c.UpdateCart([]LineItem{{ID: 1, Price: money(10), Quantity: 1}}))

		err := c.UpdateCart([]LineItem{
			{ID: 1, Price: money(10), Quantity: 1},
			{ID: 1, Price: money(10), Quantity: 2},
		})
		require.ErrorIs(t, err, ErrInvalidItems)

		err = c.UpdateCart([]LineItem{{ID: 3, Price: money(10), Quantity: 0}})
		require.ErrorIs(t, err, ErrInvalidItems)

		assert.Equal(t, []LineItem{{ID: 1, Price: money(10), Quantity: 1}}, c.Items())
		assert.True(t, c.Total().Equal(money(10)))
	})

	t.Run("caller slice is not retained", func(t *testing.T) {
		c := New(nil, nil)
		in := []LineItem{{ID: 1, Price: money(10), Quantity: 1}}
		require.NoError(t, c.UpdateCart(in))

		in[0].Quantity = 99
		assert.Equal(t, 1, c.Items()[0].Quantity)
		assert.True(t, c.Total().Equal(money(10)))
	})
}

func TestClearCart(t *testing.T) {
	c := New(nil, nil)
	require.NoError(t, c.AddItem(ProductSnapshot{ID: 1, Price: money(100), Stock: 2}))

	c.ClearCart()
	c.ClearCart()

	assert.Empty(t, c.Items())
	assert.True(t, c.Total().IsZero())
}

func TestItemsReturnsSnapshot(t *testing.T) {
	c := New(nil, nil)
	require.NoError(t, c.AddItem(ProductSnapshot{ID: 1, Price: money(100), Stock: 2}))

	items := c.Items()
	items[0].Quantity = 50
	items[0].Price = money(1)
	_ = append(items, LineItem{ID: 2, Quantity: 1})

	got := c.Items()
	require.Len(t, got, 1)
	assert.Equal(t, 1, got[0].Quantity)
	assert.True(t, got[0].Price.Equal(money(100)))
	assert.True(t, c.Total().Equal(money(100)))
}

func TestTotalHasNoDrift(t *testing.T) {
	c := New(nil, nil)
	p1 := ProductSnapshot{ID: 1, Price: decimal.RequireFromString("0.10"), Stock: 1000}
	p2 := ProductSnapshot{ID: 2, Price: decimal.RequireFromString("19.99"), Stock: 1000}

	for i := 0; i < 300; i++ {
		require.NoError(t, c.AddItem(p1))
		if i%3 == 0 {
			require.NoError(t, c.AddItem(p2))
		}
		if i%7 == 0 {
			require.NoError(t, c.DecreaseQuantity(0))
		}
		assert.True(t, c.Total().Equal(sumOf(c.Items())), "iteration %d", i)
	}

	// 300 units of 0.10 less 42 decrements (the first lands on quantity 1),
	// plus 100 units of 19.99
	want := decimal.RequireFromString("25.80").Add(decimal.RequireFromString("1999"))
	assert.True(t, c.Total().Equal(want), "got %s want %s", c.Total(), want)
}

func TestCheckout(t *testing.T) {
	t.Run("submits items without clearing", func(t *testing.T) {
		sub := &fakeSubmitter{resp: Confirmation(`{"message":"Checkout successful"}`)}
		c := New(sub, nil)
		require.NoError(t, c.UpdateCart([]LineItem{
			{ID: 1, Price: money(100), Quantity: 2},
			{ID: 2, Price: money(200), Quantity: 1},
		}))

		conf, err := c.Checkout(context.Background())
		require.NoError(t, err)
		assert.JSONEq(t, `{"message":"Checkout successful"}`, string(conf))

		require.Len(t, sub.calls, 1)
		assert.Equal(t, c.Items(), sub.calls[0])
		assert.Len(t, c.Items(), 2)
		assert.True(t, c.Total().Equal(money(400)))
	})

	t.Run("failure leaves cart intact and retry resubmits", func(t *testing.T) {
		sub := &fakeSubmitter{err: errors.New("server error")}
		c := New(sub, nil)
		require.NoError(t, c.UpdateCart([]LineItem{{ID: 1, Price: money(100), Quantity: 2}}))
		before := c.Items()

		_, err := c.Checkout(context.Background())
		require.Error(t, err)
		assert.Equal(t, before, c.Items())

		_, err = c.Checkout(context.Background())
		require.Error(t, err)
		require.Len(t, sub.calls, 2)
		assert.Equal(t, sub.calls[0], sub.calls[1])
	})

	t.Run("empty cart is not submitted", func(t *testing.T) {
		sub := &fakeSubmitter{}
		c := New(sub, nil)

		_, err := c.Checkout(context.Background())
		require.ErrorIs(t, err, ErrEmptyCart)
		assert.Empty(t, sub.calls)
	})

	t.Run("submitted slice is a copy", func(t *testing.T) {
		sub := &fakeSubmitter{}
		c := New(sub, nil)
		require.NoError(t, c.UpdateCart([]LineItem{{ID: 1, Price: money(100), Quantity: 1}}))

		_, err := c.Checkout(context.Background())
		require.NoError(t, err)
		sub.calls[0][0].Quantity = 7

		assert.Equal(t, 1, c.Items()[0].Quantity)
	})
}

func TestSubmitReturnsWhatWasSent(t *testing.T) {
	sub := &fakeSubmitter{resp: Confirmation(`{"orderId":1}`)}
	c := New(sub, nil)
	require.NoError(t, c.UpdateCart([]LineItem{
		{ID: 1, Price: money(100), Quantity: 2, Stock: 5},
		{ID: 2, Price: money(200), Quantity: 1, Stock: 1},
	}))

	got, err := c.Submit(context.Background())
	require.NoError(t, err)
	require.Len(t, sub.calls, 1)
	assert.Equal(t, sub.calls[0], got.Items)
	assert.True(t, got.Total.Equal(money(400)))
	assert.JSONEq(t, `{"orderId":1}`, string(got.Confirmation))
}

func TestRemoveSubmitted(t *testing.T) {
	c := New(nil, nil)
	require.NoError(t, c.UpdateCart([]LineItem{
		{ID: 1, Price: money(100), Quantity: 3, Stock: 5},
		{ID: 2, Price: money(200), Quantity: 1, Stock: 1},
		{ID: 3, Price: money(5), Quantity: 2, Stock: 2},
	}))

	c.RemoveSubmitted([]LineItem{
		{ID: 1, Price: money(100), Quantity: 2},
		{ID: 2, Price: money(200), Quantity: 1},
		{ID: 9, Price: money(1), Quantity: 1},
	})

	items := c.Items()
	require.Len(t, items, 2)
	assert.Equal(t, int64(1), items[0].ID)
	assert.Equal(t, 1, items[0].Quantity)
	assert.Equal(t, int64(3), items[1].ID)
	assert.Equal(t, 2, items[1].Quantity)
	assert.True(t, c.Total().Equal(money(110)))

	c.RemoveSubmitted(c.Items())
	assert.Empty(t, c.Items())
	assert.True(t, c.Total().IsZero())
}

func TestLineItemJSONUsesNumbers(t *testing.T) {
	raw, err := json.Marshal([]LineItem{{ID: 1, Name: "Lamp", Price: decimal.RequireFromString("19.99"), Quantity: 2, Stock: 5}})
	require.NoError(t, err)
	assert.JSONEq(t, `[{"id":1,"name":"Lamp","price":19.99,"quantity":2,"stock":5}]`, string(raw))

	var back []LineItem
	require.NoError(t, json.Unmarshal(raw, &back))
	assert.True(t, back[0].Price.Equal(decimal.RequireFromString("19.99")))

	// other decimals in the process keep the library default
	assert.False(t, decimal.MarshalJSONWithoutQuotes)
	plain, err := json.Marshal(decimal.RequireFromString("1.5"))
	require.NoError(t, err)
	assert.Equal(t, `"1.5"`, string(plain))
}
