package order

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"saffron-order-desk/internal/catalog"
)

func newTestOrder() (*catalog.Catalog, *Order) {
	cat := catalog.Default()
	return cat, New(cat.IDs())
}

func TestNewSeedsDrafts(t *testing.T) {
	cat, o := newTestOrder()

	for _, id := range cat.IDs() {
		assert.Equal(t, 1, o.Draft(id), id)
	}
	assert.Len(t, o.Drafts(), len(cat.Products))
	assert.True(t, o.IsEmpty())
	assert.Equal(t, 0, o.TotalItemCount())
}

func TestSetDraftClamps(t *testing.T) {
	_, o := newTestOrder()

	assert.Equal(t, 99, o.SetDraft("mongra-saffron", 150))
	assert.Equal(t, 99, o.Draft("mongra-saffron"))

	o.SetDraft("mongra-saffron", math.NaN())
	assert.Equal(t, 1, o.Draft("mongra-saffron"))

	assert.Equal(t, 7, o.SetDraftText("pistachios", "7"))
	assert.Equal(t, 1, o.SetDraftText("pistachios", "lots"))
}

func TestSetDraftPropagatesOnlyToCartMembers(t *testing.T) {
	_, o := newTestOrder()
	o.AddOrUpdate("mongra-saffron", 3)

	o.SetDraft("mongra-saffron", 5)
	q, ok := o.Cart().Quantity("mongra-saffron")
	require.True(t, ok)
	assert.Equal(t, 5, q)

	o.SetDraft("pistachios", 4)
	assert.False(t, o.Cart().Contains("pistachios"))
	assert.Equal(t, 4, o.Draft("pistachios"))
}

func TestSetDraftUnknownProduct(t *testing.T) {
	_, o := newTestOrder()

	o.SetDraft("walnuts", 6)
	assert.Equal(t, 6, o.Draft("walnuts"))
	assert.False(t, o.Cart().Contains("walnuts"))
}

func TestAddDoesNotTouchOtherDrafts(t *testing.T) {
	_, o := newTestOrder()
	o.SetDraft("pistachios", 8)

	o.AddOrUpdate("mongra-saffron", 2)
	assert.Equal(t, 8, o.Draft("pistachios"))
}

func TestAddOrUpdateRoundTrip(t *testing.T) {
	for _, q := range []int{-3, 0, 1, 2, 50, 99, 100, 1000} {
		_, o := newTestOrder()
		o.AddOrUpdate("iranian-negin", q)

		got, ok := o.Cart().Quantity("iranian-negin")
		require.True(t, ok)
		assert.Equal(t, ClampInt(q), got)
	}
}

func TestAddFromDraft(t *testing.T) {
	_, o := newTestOrder()
	o.StepDraft("medjool-dates", 2)

	assert.Equal(t, 3, o.AddFromDraft("medjool-dates"))
	q, _ := o.Cart().Quantity("medjool-dates")
	assert.Equal(t, 3, q)
}

func TestStepDraftStaysInRange(t *testing.T) {
	_, o := newTestOrder()

	assert.Equal(t, 1, o.StepDraft("pistachios", -1))
	o.SetDraft("pistachios", 99)
	assert.Equal(t, 99, o.StepDraft("pistachios", 1))
}

func TestOpenForEditing(t *testing.T) {
	t.Run("seeds from cart", func(t *testing.T) {
		_, o := newTestOrder()
		o.AddOrUpdate("afghan-saffron", 4)
		o.drafts.set("afghan-saffron", 9)

		assert.Equal(t, 4, o.OpenForEditing("afghan-saffron"))
		assert.Equal(t, 4, o.Draft("afghan-saffron"))
	})

	t.Run("keeps in-progress draft", func(t *testing.T) {
		_, o := newTestOrder()
		o.SetDraft("afghan-saffron", 6)

		assert.Equal(t, 6, o.OpenForEditing("afghan-saffron"))
		assert.Equal(t, 6, o.Draft("afghan-saffron"))
	})
}

func TestRemove(t *testing.T) {
	_, o := newTestOrder()
	o.SetDraft("mongra-saffron", 4)
	o.AddFromDraft("mongra-saffron")

	o.Remove("mongra-saffron")
	assert.False(t, o.Cart().Contains("mongra-saffron"))
	assert.Equal(t, 1, o.Draft("mongra-saffron"))

	assert.NotPanics(t, func() { o.Remove("mongra-saffron") })
	assert.True(t, o.IsEmpty())
}

func TestClear(t *testing.T) {
	cat, o := newTestOrder()
	o.SetDraft("mongra-saffron", 4)
	o.AddFromDraft("mongra-saffron")
	o.SetDraft("pistachios", 9)
	o.SetNote("deliver after 5pm")

	o.Clear()

	assert.True(t, o.IsEmpty())
	assert.Equal(t, "", o.Note())
	for _, id := range cat.IDs() {
		assert.Equal(t, 1, o.Draft(id), id)
	}
}

func TestTotalItemCount(t *testing.T) {
	_, o := newTestOrder()
	o.AddOrUpdate("mongra-saffron", 2)
	o.AddOrUpdate("pistachios", 5)

	assert.Equal(t, 7, o.TotalItemCount())
	assert.Equal(t, 2, o.Cart().Len())
}

func TestCloneIsIndependent(t *testing.T) {
	_, o := newTestOrder()
	o.AddOrUpdate("pistachios", 2)
	o.SetNote("gift wrap")

	c := o.Clone()
	c.AddOrUpdate("pistachios", 9)
	c.SetDraft("mongra-saffron", 5)
	c.SetNote("")

	q, _ := o.Cart().Quantity("pistachios")
	assert.Equal(t, 2, q)
	assert.Equal(t, 1, o.Draft("mongra-saffron"))
	assert.Equal(t, "gift wrap", o.Note())
}
