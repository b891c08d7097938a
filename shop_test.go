package ontoshop

import (
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zaptest/observer"

	"github.com/underlay/ontoshop/media"
	"github.com/underlay/ontoshop/rows"
	"github.com/underlay/ontoshop/types"
)

type fixture struct {
	shop    *Shop
	path    string
	media   string
	metrics *Metrics
	logs    *observer.ObservedLogs
}

func newFixture(t *testing.T) *fixture {
	dir := t.TempDir()
	return newFixtureAt(t, filepath.Join(dir, "ontology", "Ecommerce_Platform.xml"), media.New(filepath.Join(dir, "media")))
}

func newFixtureAt(t *testing.T, path string, images ImageStore) *fixture {
	core, logs := observer.New(zap.DebugLevel)
	logger := zap.New(core)
	metrics := NewMetrics(prometheus.NewRegistry())

	rowStore, err := rows.OpenBadger("", true, logger)
	require.NoError(t, err)

	shop := New(Options{
		Backend: NewFileBackend(path, logger, metrics),
		Rows:    rowStore,
		Images:  images,
		Logger:  logger,
		Metrics: metrics,
	})
	t.Cleanup(func() { shop.Close() })

	f := &fixture{shop: shop, path: path, metrics: metrics, logs: logs}
	if m, is := images.(*media.Store); is {
		f.media = m.Root
	}
	return f
}

func (f *fixture) product(t *testing.T, name string, price float64, stock int, discount float64) *Product {
	p, err := f.shop.Products.Create(NewProduct{Name: name, Price: price, Stock: stock, Discount: discount})
	require.NoError(t, err)
	return p
}

// fakeImages records removals and can be made to fail them
type fakeImages struct {
	saved     []string
	removed   []string
	removeErr error
}

func (i *fakeImages) Save(name string, data []byte) (string, error) {
	rel := "product_images/" + name
	i.saved = append(i.saved, rel)
	return rel, nil
}

func (i *fakeImages) Remove(rel string) error {
	i.removed = append(i.removed, rel)
	return i.removeErr
}

func TestRoleEnforcement(t *testing.T) {
	f := newFixture(t)
	f.product(t, "Widget", 10, 5, 0)

	customer := User("alice")
	_, err := f.shop.CreateProduct(customer, ProductForm{Name: "Lamp", Price: "1", StockLevel: "1"}, nil)
	assert.ErrorIs(t, err, ErrForbidden)
	assert.ErrorIs(t, f.shop.DeleteProduct(customer, "widget"), ErrForbidden)
	_, err = f.shop.UpdateProduct(customer, "widget", ProductUpdate{})
	assert.ErrorIs(t, err, ErrForbidden)
	_, err = f.shop.ListOrders(customer)
	assert.ErrorIs(t, err, ErrForbidden)
	_, err = f.shop.ListFeedback(customer)
	assert.ErrorIs(t, err, ErrForbidden)
	_, err = f.shop.Export(customer, FormatNQuads)
	assert.ErrorIs(t, err, ErrForbidden)

	products, err := f.shop.ListProducts(customer)
	require.NoError(t, err)
	assert.Len(t, products, 1)

	_, err = f.shop.ListProducts(Session{Username: "mallory", Role: "guest"})
	assert.ErrorIs(t, err, ErrForbidden)

	order, err := f.shop.PlaceOrder(customer, OrderForm{ProductName: "Widget", Quantity: "2"})
	require.NoError(t, err)
	assert.Equal(t, "alice", order.Customer)

	orders, err := f.shop.ListOrders(Admin("root"))
	require.NoError(t, err)
	require.Len(t, orders, 1)
	assert.Equal(t, "alice", orders[0].Customer)
}

func TestCreateProductFromForm(t *testing.T) {
	f := newFixture(t)
	admin := Admin("root")

	p, err := f.shop.CreateProduct(admin, ProductForm{
		Name: "Desk Lamp", Price: "25.50", StockLevel: "4", Discount: "",
	}, &Upload{Name: "lamp.png", Data: []byte("png")})
	require.NoError(t, err)
	assert.Equal(t, "desk_lamp", p.ID)
	assert.Equal(t, "product_images/lamp.png", p.Image)
	assert.Equal(t, 25.5, p.FinalPrice)

	data, err := os.ReadFile(filepath.Join(f.media, "product_images", "lamp.png"))
	require.NoError(t, err)
	assert.Equal(t, "png", string(data))

	require.NoError(t, f.shop.DeleteProduct(admin, "desk_lamp"))
	_, err = os.Stat(filepath.Join(f.media, "product_images", "lamp.png"))
	assert.True(t, os.IsNotExist(err))
}

func TestCreateProductRejectsBadForm(t *testing.T) {
	f := newFixture(t)

	_, err := f.shop.CreateProduct(Admin("root"), ProductForm{Name: "Lamp", Price: "cheap", StockLevel: "1"}, nil)
	var verr *ValidationError
	require.True(t, errors.As(err, &verr))
	assert.Equal(t, "price", verr.Field)
	assert.ErrorIs(t, err, ErrInvalid)

	_, err = f.shop.CreateProduct(Admin("root"), ProductForm{Name: "Lamp", Price: "1", StockLevel: "1", Discount: "150"}, nil)
	assert.ErrorIs(t, err, ErrInvalid)

	assert.Equal(t, 0, f.shop.Store.Snapshot().Len())
}

func TestCreateProductRejectsNonFiniteNumbers(t *testing.T) {
	f := newFixture(t)
	for _, value := range []string{"NaN", "Inf", "-Inf", "+Inf", "nan"} {
		_, err := f.shop.CreateProduct(Admin("root"), ProductForm{Name: "Lamp", Price: value, StockLevel: "1"}, nil)
		var verr *ValidationError
		require.True(t, errors.As(err, &verr), value)
		assert.Equal(t, "price", verr.Field, value)

		_, err = f.shop.CreateProduct(Admin("root"), ProductForm{Name: "Lamp", Price: "1", StockLevel: "1", Discount: value}, nil)
		require.True(t, errors.As(err, &verr), value)
		assert.Equal(t, "discount", verr.Field, value)
	}
	assert.Equal(t, 0, f.shop.Store.Snapshot().Len())
}

func TestCreateProductConflictKeepsExistingImage(t *testing.T) {
	images := &fakeImages{}
	f := newFixtureAt(t, filepath.Join(t.TempDir(), "shop.xml"), images)
	admin := Admin("root")

	_, err := f.shop.CreateProduct(admin, ProductForm{Name: "Lamp", Price: "1", StockLevel: "1"}, &Upload{Name: "lamp.png"})
	require.NoError(t, err)

	_, err = f.shop.CreateProduct(admin, ProductForm{Name: "lamp", Price: "2", StockLevel: "1"}, &Upload{Name: "lamp.png"})
	assert.ErrorIs(t, err, ErrConflict)
	assert.Len(t, images.saved, 1)
	assert.Empty(t, images.removed)
}

func TestCreateProductRemovesImageWhenPersistFails(t *testing.T) {
	blocker := filepath.Join(t.TempDir(), "file")
	require.NoError(t, os.WriteFile(blocker, []byte("x"), 0644))

	images := &fakeImages{}
	f := newFixtureAt(t, filepath.Join(blocker, "shop.xml"), images)

	_, err := f.shop.CreateProduct(Admin("root"), ProductForm{Name: "Lamp", Price: "1", StockLevel: "1"}, &Upload{Name: "lamp.png"})
	assert.ErrorIs(t, err, ErrPersist)
	assert.Equal(t, []string{"product_images/lamp.png"}, images.removed)
}

func TestDeleteProductImages(t *testing.T) {
	images := &fakeImages{removeErr: errors.New("disk on fire")}
	f := newFixtureAt(t, filepath.Join(t.TempDir(), "shop.xml"), images)
	admin := Admin("root")

	f.product(t, "Plain", 1, 1, 0)
	require.NoError(t, f.shop.DeleteProduct(admin, "plain"))
	assert.Empty(t, images.removed)

	_, err := f.shop.CreateProduct(admin, ProductForm{Name: "Fancy", Price: "1", StockLevel: "1"}, &Upload{Name: "fancy.png"})
	require.NoError(t, err)
	require.NoError(t, f.shop.DeleteProduct(admin, "fancy"))
	assert.Equal(t, []string{"product_images/fancy.png"}, images.removed)
	assert.Equal(t, 1, f.logs.FilterMessage("Failed to remove product image").Len())

	assert.ErrorIs(t, f.shop.DeleteProduct(admin, "fancy"), ErrNotFound)
}

func TestCreateProductInvalidFormKeepsOtherImage(t *testing.T) {
	f := newFixture(t)
	admin := Admin("root")

	lamp, err := f.shop.CreateProduct(admin, ProductForm{Name: "Lamp", Price: "1", StockLevel: "1"}, &Upload{Name: "x.png", Data: []byte("lamp")})
	require.NoError(t, err)
	assert.Equal(t, "product_images/x.png", lamp.Image)

	_, err = f.shop.CreateProduct(admin, ProductForm{Name: "Chair", Price: "1", StockLevel: "1", Discount: "150"}, &Upload{Name: "x.png", Data: []byte("chair")})
	assert.ErrorIs(t, err, ErrInvalid)

	data, err := os.ReadFile(filepath.Join(f.media, "product_images", "x.png"))
	require.NoError(t, err)
	assert.Equal(t, "lamp", string(data))

	entries, err := os.ReadDir(filepath.Join(f.media, "product_images"))
	require.NoError(t, err)
	assert.Len(t, entries, 1)
}

func TestSameUploadNameKeepsBothImages(t *testing.T) {
	f := newFixture(t)
	admin := Admin("root")

	lamp, err := f.shop.CreateProduct(admin, ProductForm{Name: "Lamp", Price: "1", StockLevel: "1"}, &Upload{Name: "x.png", Data: []byte("lamp")})
	require.NoError(t, err)
	chair, err := f.shop.CreateProduct(admin, ProductForm{Name: "Chair", Price: "1", StockLevel: "1"}, &Upload{Name: "x.png", Data: []byte("chair")})
	require.NoError(t, err)
	assert.Equal(t, "product_images/x_1.png", chair.Image)

	require.NoError(t, f.shop.DeleteProduct(admin, "chair"))
	_, err = os.Stat(filepath.Join(f.media, "product_images", "x_1.png"))
	assert.True(t, os.IsNotExist(err))

	data, err := os.ReadFile(filepath.Join(f.media, filepath.FromSlash(lamp.Image)))
	require.NoError(t, err)
	assert.Equal(t, "lamp", string(data))
}

func TestDeleteProductKeepsSharedImage(t *testing.T) {
	f := newFixture(t)
	admin := Admin("root")

	lamp, err := f.shop.CreateProduct(admin, ProductForm{Name: "Lamp", Price: "1", StockLevel: "1"}, &Upload{Name: "x.png", Data: []byte("lamp")})
	require.NoError(t, err)
	_, err = f.shop.Products.Create(NewProduct{Name: "Desk", Price: 1, Stock: 1, Image: lamp.Image})
	require.NoError(t, err)

	abs := filepath.Join(f.media, filepath.FromSlash(lamp.Image))
	require.NoError(t, f.shop.DeleteProduct(admin, "lamp"))
	_, err = os.Stat(abs)
	assert.NoError(t, err)
	assert.Equal(t, 1, f.logs.FilterMessage("Keeping shared product image").Len())

	require.NoError(t, f.shop.DeleteProduct(admin, "desk"))
	_, err = os.Stat(abs)
	assert.True(t, os.IsNotExist(err))
}

func TestSubmitFeedbackUsesSessionUser(t *testing.T) {
	f := newFixture(t)

	entry, err := f.shop.SubmitFeedback(User("bea"), FeedbackForm{Email: "bea@example.org", Rating: "4", Comment: "nice"})
	require.NoError(t, err)
	assert.Equal(t, "bea", entry.User)

	_, err = f.shop.SubmitFeedback(User("bea"), FeedbackForm{Email: "bea@example.org", Rating: "four"})
	assert.ErrorIs(t, err, ErrInvalid)

	entries, err := f.shop.ListFeedback(Admin("root"))
	require.NoError(t, err)
	require.Len(t, entries, 1)
	require.NoError(t, f.shop.DeleteFeedback(Admin("root"), entry.ID))
}

func TestExportAndImport(t *testing.T) {
	f := newFixture(t)
	admin := Admin("root")
	f.product(t, "Widget", 10, 5, 10)

	for _, format := range []string{FormatRDFXML, FormatNQuads, FormatJSONLD} {
		out, err := f.shop.Export(admin, format)
		require.NoError(t, err, format)
		assert.Contains(t, string(out), "Widget", format)
	}

	_, err := f.shop.Export(admin, "turtle")
	assert.ErrorIs(t, err, ErrInvalid)

	nquads, err := f.shop.Export(admin, FormatNQuads)
	require.NoError(t, err)

	other := newFixture(t)
	added, err := other.shop.Import(admin, string(nquads))
	require.NoError(t, err)
	assert.Equal(t, f.shop.Store.Snapshot().Len(), added)

	p, err := other.shop.GetProduct(User("alice"), "widget")
	require.NoError(t, err)
	assert.Equal(t, 9.0, p.FinalPrice)

	added, err = other.shop.Import(admin, string(nquads))
	require.NoError(t, err)
	assert.Equal(t, 0, added)

	_, err = other.shop.Import(admin, "<not quads")
	assert.ErrorIs(t, err, ErrInvalid)
}

func TestProductIDIsSlug(t *testing.T) {
	f := newFixture(t)
	p := f.product(t, "Big Red Ball", 3, 1, 0)
	assert.Equal(t, types.Slug("Big Red Ball"), p.ID)
	assert.Equal(t, "big_red_ball", p.ID)
}

type closingBackend struct {
	Backend
	err    error
	closed bool
}

func (b *closingBackend) Close() error {
	b.closed = true
	return b.err
}

type closingRows struct {
	rows.Store
	err error
}

func (r *closingRows) Close() error {
	r.Store.Close()
	return r.err
}

func TestCloseReportsBackendAndRowErrors(t *testing.T) {
	backendErr, rowsErr := errors.New("watcher stuck"), errors.New("rows stuck")
	backend := &closingBackend{Backend: NewFileBackend(filepath.Join(t.TempDir(), "shop.xml"), nil, nil), err: backendErr}
	shop := New(Options{Backend: backend, Rows: &closingRows{Store: rows.NewMemoryStore(), err: rowsErr}})

	err := shop.Close()
	assert.True(t, backend.closed)
	assert.ErrorIs(t, err, backendErr)
	assert.ErrorIs(t, err, rowsErr)

	backend.err = nil
	shop = New(Options{Backend: backend, Rows: rows.NewMemoryStore()})
	assert.NoError(t, shop.Close())
}
