package ontoshop

import (
	"fmt"
	"time"

	"github.com/google/uuid"
	ld "github.com/piprate/json-gold/ld"
	"go.uber.org/zap"

	"github.com/underlay/ontoshop/graph"
	"github.com/underlay/ontoshop/types"
)

// UnknownCustomer and UnknownProduct fill in order fields whose triples are
// missing or whose referent is gone
const (
	UnknownCustomer = "Unknown"
	UnknownProduct  = "Unknown Product"
)

// Statuses lists the values an order status may be set to
var Statuses = []string{"pending", "processing", "shipped", "delivered", "cancelled"}

// Order is the record projected from an Order subject. Price is the final
// price per unit at the time the order was placed.
type Order struct {
	ID          string    `json:"id"`
	Customer    string    `json:"customer"`
	ProductID   string    `json:"product_id"`
	ProductName string    `json:"product"`
	Quantity    int       `json:"quantity"`
	Price       float64   `json:"price"`
	Status      string    `json:"status"`
	OrderDate   time.Time `json:"order_date"`
}

// Orders is the repository of Order entities
type Orders struct {
	store   *Store
	logger  *zap.Logger
	metrics *Metrics
	now     func() time.Time
}

// NewOrders returns the order repository over store
func NewOrders(store *Store, logger *zap.Logger, metrics *Metrics) *Orders {
	if logger == nil {
		logger = zap.NewNop()
	}
	if metrics == nil {
		metrics = NewMetrics(nil)
	}
	return &Orders{store: store, logger: logger, metrics: metrics, now: time.Now}
}

func projectOrder(g *graph.Graph, s ld.Node) (o Order, err error) {
	if o.ID, err = localID(s); err != nil {
		return
	}
	if o.Customer, err = stringOr(g, s, types.Customer, UnknownCustomer); err != nil {
		return
	}

	o.ProductName = UnknownProduct
	if ref := g.Value(s, types.IRI(types.OfProduct), nil); ref != nil {
		o.ProductID, _ = types.LocalID(ref)
		if name := g.Value(ref, types.IRI(types.Name), nil); name != nil {
			if value, err := types.AsString(name); err == nil && value != "" {
				o.ProductName = value
			}
		}
	}

	if o.Quantity, err = intOr(g, s, types.Quantity, 0); err != nil {
		return
	}
	if o.Price, err = floatOr(g, s, types.Price, 0); err != nil {
		return
	}
	if o.Status, err = stringOr(g, s, types.Status, types.DefaultStatus); err != nil {
		return
	}
	o.OrderDate, err = timeOr(g, s, types.OrderDate)
	return
}

// List returns every well-formed order, ordered by id
func (r *Orders) List() (orders []Order, err error) {
	err = r.store.View(func(g *graph.Graph) error {
		orders = collect("order", subjectsOf(g, types.Order), func(s ld.Node) (Order, error) {
			return projectOrder(g, s)
		}, r.logger, r.metrics)
		return nil
	})
	return
}

// Get returns the order with the given id
func (r *Orders) Get(id string) (order *Order, err error) {
	err = r.store.View(func(g *graph.Graph) error {
		s := types.Subject(id)
		if id == "" || !isA(g, s, types.Order) {
			return notFound("order", id)
		}
		o, err := projectOrder(g, s)
		if err != nil {
			return err
		}
		order = &o
		return nil
	})
	return
}

// Place orders quantity units of the product with the given id
func (r *Orders) Place(customer, productID string, quantity int) (*Order, error) {
	return r.place(customer, quantity, func(g *graph.Graph) (ld.Node, error) {
		s := types.Subject(productID)
		if productID == "" || !isA(g, s, types.Product) {
			return nil, notFound("product", productID)
		}
		return s, nil
	})
}

// PlaceByName orders quantity units of the product whose name is name
func (r *Orders) PlaceByName(customer, name string, quantity int) (*Order, error) {
	return r.place(customer, quantity, func(g *graph.Graph) (ld.Node, error) {
		if s := productByName(g, name); s != nil {
			return s, nil
		}
		return nil, notFound("product named", name)
	})
}

// place checks the stock, decrements it, and adds the order. Both changes
// are persisted together or not at all.
func (r *Orders) place(customer string, quantity int, resolve func(*graph.Graph) (ld.Node, error)) (order *Order, err error) {
	if quantity < 1 {
		return nil, invalid("quantity", "must be at least 1")
	}
	if customer == "" {
		customer = UnknownCustomer
	}

	err = r.store.Update(func(g *graph.Graph) error {
		product, err := resolve(g)
		if err != nil {
			return err
		}
		p, err := projectProduct(g, product)
		if err != nil {
			return fmt.Errorf("product %s cannot be ordered: %w", graph.Term(product), err)
		}
		if quantity > p.Stock {
			return &StockError{ProductID: p.ID, Available: p.Stock, Requested: quantity}
		}

		set(g, product, types.StockLevel, types.Integer(p.Stock-quantity))

		o := Order{
			ID:          uuid.New().String(),
			Customer:    customer,
			ProductID:   p.ID,
			ProductName: p.Name,
			Quantity:    quantity,
			Price:       p.FinalPrice,
			Status:      types.DefaultStatus,
			OrderDate:   r.now().UTC(),
		}
		s := types.Subject(o.ID)
		g.Add(s, rdfType, types.IRI(types.Order))
		set(g, s, types.Customer, types.String(o.Customer))
		set(g, s, types.OfProduct, product)
		set(g, s, types.Quantity, types.Integer(o.Quantity))
		set(g, s, types.Price, types.Float(o.Price))
		set(g, s, types.Status, types.String(o.Status))
		set(g, s, types.OrderDate, types.DateTime(o.OrderDate))

		order = &o
		return nil
	})
	if err != nil {
		return nil, err
	}

	r.logger.Info("Placed order",
		zap.String("id", order.ID),
		zap.String("product", order.ProductID),
		zap.Int("quantity", quantity))
	return order, nil
}

// ValidStatus reports whether status is one of Statuses
func ValidStatus(status string) bool {
	for _, s := range Statuses {
		if s == status {
			return true
		}
	}
	return false
}

// UpdateStatus replaces the status of an order
func (r *Orders) UpdateStatus(id, status string) (order *Order, err error) {
	if !ValidStatus(status) {
		return nil, invalid("status", fmt.Sprintf("%q is not one of %v", status, Statuses))
	}

	err = r.store.Update(func(g *graph.Graph) error {
		s := types.Subject(id)
		if id == "" || !isA(g, s, types.Order) {
			return notFound("order", id)
		}
		set(g, s, types.Status, types.String(status))
		o, err := projectOrder(g, s)
		if err != nil {
			return err
		}
		order = &o
		return nil
	})
	if err != nil {
		order = nil
	}
	return
}

// Delete removes every triple anchored at the order
func (r *Orders) Delete(id string) error {
	return r.store.Update(func(g *graph.Graph) error {
		s := types.Subject(id)
		if id == "" || !isA(g, s, types.Order) {
			return notFound("order", id)
		}
		n := g.RemoveSubject(s)
		r.logger.Info("Deleted order", zap.String("id", id), zap.Int("triples", n))
		return nil
	})
}
