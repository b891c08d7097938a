package ontoshop

import (
	"bytes"
	"errors"
	"fmt"
	"io"

	"go.uber.org/zap"

	"github.com/underlay/ontoshop/graph"
	"github.com/underlay/ontoshop/media"
	"github.com/underlay/ontoshop/rows"
	"github.com/underlay/ontoshop/types"
)

// ImageStore stores uploaded images and removes them by the relative path
// it returned
type ImageStore interface {
	Save(name string, data []byte) (string, error)
	Remove(rel string) error
}

var _ ImageStore = (*media.Store)(nil)

// Export formats
const (
	FormatRDFXML = "xml"
	FormatNQuads = "nquads"
	FormatJSONLD = "jsonld"
)

// Options configures a Shop
type Options struct {
	Backend Backend
	Rows    rows.Store
	Images  ImageStore
	Logger  *zap.Logger
	Metrics *Metrics
}

// Shop is the entry point for callers holding a session. It checks the
// session role and keeps image files in step with products.
type Shop struct {
	Store    *Store
	Products *Products
	Orders   *Orders
	Feedback *Feedbacks

	images ImageStore
	logger *zap.Logger
}

// New builds a Shop and its repositories over one Store
func New(opts Options) *Shop {
	logger := opts.Logger
	if logger == nil {
		logger = zap.NewNop()
	}
	metrics := opts.Metrics
	if metrics == nil {
		metrics = NewMetrics(nil)
	}
	rowStore := opts.Rows
	if rowStore == nil {
		rowStore = rows.NewMemoryStore()
	}

	store := NewStore(opts.Backend)
	return &Shop{
		Store:    store,
		Products: NewProducts(store, logger.Named("products"), metrics),
		Orders:   NewOrders(store, logger.Named("orders"), metrics),
		Feedback: NewFeedbacks(store, rowStore, logger.Named("feedback"), metrics),
		images:   opts.Images,
		logger:   logger,
	}
}

// ListProducts returns every product
func (s *Shop) ListProducts(sess Session) ([]Product, error) {
	if err := sess.check("list products", false); err != nil {
		return nil, err
	}
	return s.Products.List()
}

// GetProduct returns one product
func (s *Shop) GetProduct(sess Session, id string) (*Product, error) {
	if err := sess.check("get product", false); err != nil {
		return nil, err
	}
	return s.Products.Get(id)
}

// CreateProduct parses the form, stores the upload if there is one, and
// adds the product. The stored image is removed again if the product
// cannot be added.
func (s *Shop) CreateProduct(sess Session, form ProductForm, upload *Upload) (*Product, error) {
	if err := sess.check("create product", true); err != nil {
		return nil, err
	}
	input, err := form.Parse()
	if err != nil {
		return nil, err
	} else if err = validateProduct(input.Name, input.Price, input.Stock, input.Discount); err != nil {
		return nil, err
	}

	var saved string
	if upload != nil && s.images != nil {
		if _, err := s.Products.Get(types.Slug(input.Name)); err == nil {
			return nil, fmt.Errorf("%w: product %q", ErrConflict, types.Slug(input.Name))
		}
		if saved, err = s.images.Save(upload.Name, upload.Data); err != nil {
			return nil, fmt.Errorf("failed to store image: %w", err)
		}
		input.Image = saved
	}

	product, err := s.Products.Create(input)
	if err != nil && saved != "" {
		s.removeImage(saved)
	}
	return product, err
}

// UpdateProduct changes the given product fields
func (s *Shop) UpdateProduct(sess Session, id string, u ProductUpdate) (*Product, error) {
	if err := sess.check("update product", true); err != nil {
		return nil, err
	}
	return s.Products.Update(id, u)
}

// DeleteProduct removes the product and then the image it names, unless
// that is the default image or another product still names it
func (s *Shop) DeleteProduct(sess Session, id string) error {
	if err := sess.check("delete product", true); err != nil {
		return err
	}
	product, err := s.Products.Delete(id)
	if err != nil {
		return err
	}
	if product.Image == "" || product.Image == types.DefaultImage {
		return nil
	}

	remaining, err := s.Products.List()
	if err != nil {
		s.logger.Warn("Keeping product image", zap.String("path", product.Image), zap.Error(err))
		return nil
	}
	for _, other := range remaining {
		if other.Image == product.Image {
			s.logger.Info("Keeping shared product image", zap.String("path", product.Image), zap.String("product", other.ID))
			return nil
		}
	}
	s.removeImage(product.Image)
	return nil
}

func (s *Shop) removeImage(rel string) {
	if s.images == nil {
		return
	}
	if err := s.images.Remove(rel); err != nil {
		s.logger.Warn("Failed to remove product image", zap.String("path", rel), zap.Error(err))
	}
}

// PlaceOrder orders a product for the session user
func (s *Shop) PlaceOrder(sess Session, form OrderForm) (*Order, error) {
	if err := sess.check("place order", false); err != nil {
		return nil, err
	}
	quantity, err := form.Parse()
	if err != nil {
		return nil, err
	}
	if form.ProductID != "" {
		return s.Orders.Place(sess.Username, form.ProductID, quantity)
	}
	return s.Orders.PlaceByName(sess.Username, form.ProductName, quantity)
}

// ListOrders returns every order
func (s *Shop) ListOrders(sess Session) ([]Order, error) {
	if err := sess.check("list orders", true); err != nil {
		return nil, err
	}
	return s.Orders.List()
}

// UpdateOrderStatus sets the status of an order
func (s *Shop) UpdateOrderStatus(sess Session, id, status string) (*Order, error) {
	if err := sess.check("update order status", true); err != nil {
		return nil, err
	}
	return s.Orders.UpdateStatus(id, status)
}

// DeleteOrder removes an order
func (s *Shop) DeleteOrder(sess Session, id string) error {
	if err := sess.check("delete order", true); err != nil {
		return err
	}
	return s.Orders.Delete(id)
}

// SubmitFeedback records feedback from the session user
func (s *Shop) SubmitFeedback(sess Session, form FeedbackForm) (*Feedback, error) {
	if err := sess.check("submit feedback", false); err != nil {
		return nil, err
	}
	input, err := form.Parse(sess.Username)
	if err != nil {
		return nil, err
	}
	return s.Feedback.Create(input)
}

// ListFeedback returns every feedback entry
func (s *Shop) ListFeedback(sess Session) ([]Feedback, error) {
	if err := sess.check("list feedback", true); err != nil {
		return nil, err
	}
	return s.Feedback.List()
}

// DeleteFeedback removes a feedback entry from the graph and the row store
func (s *Shop) DeleteFeedback(sess Session, id string) error {
	if err := sess.check("delete feedback", true); err != nil {
		return err
	}
	return s.Feedback.Delete(id)
}

// Export serializes the whole graph in the given format
func (s *Shop) Export(sess Session, format string) ([]byte, error) {
	if err := sess.check("export", true); err != nil {
		return nil, err
	}
	g := s.Store.Snapshot()
	switch format {
	case FormatRDFXML:
		buf := &bytes.Buffer{}
		if err := graph.Encode(buf, g); err != nil {
			return nil, err
		}
		return buf.Bytes(), nil
	case FormatNQuads:
		nquads, err := g.NQuads()
		return []byte(nquads), err
	case FormatJSONLD:
		return g.JSONLD()
	default:
		return nil, invalid("format", fmt.Sprintf("%q is not one of xml, nquads, jsonld", format))
	}
}

// Import merges an N-Quads document into the graph and returns how many
// triples were new
func (s *Shop) Import(sess Session, nquads string) (int, error) {
	if err := sess.check("import", true); err != nil {
		return 0, err
	}
	other, err := graph.ParseNQuads(nquads)
	if err != nil {
		return 0, fmt.Errorf("%w: %v", ErrInvalid, err)
	}
	return s.Store.Import(other)
}

// Close releases the row store and, for a backend that holds resources such
// as a file watcher, the backend. Both are closed even if one fails.
func (s *Shop) Close() error {
	var err error
	if c, is := s.Store.backend.(io.Closer); is {
		err = c.Close()
	}
	return errors.Join(err, s.Feedback.rows.Close())
}
