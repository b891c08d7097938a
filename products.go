package ontoshop

import (
	"fmt"
	"math"
	"strings"

	ld "github.com/piprate/json-gold/ld"
	"go.uber.org/zap"

	"github.com/underlay/ontoshop/graph"
	"github.com/underlay/ontoshop/types"
)

// Product is the record projected from a Product subject. FinalPrice is
// computed on read and never stored.
type Product struct {
	ID         string  `json:"id"`
	Name       string  `json:"name"`
	Price      float64 `json:"price"`
	Stock      int     `json:"stock_level"`
	Discount   float64 `json:"discount"`
	FinalPrice float64 `json:"final_price"`
	Image      string  `json:"image"`
}

// NewProduct holds the fields of a product to create. An empty Image means
// the default image.
type NewProduct struct {
	Name     string
	Price    float64
	Stock    int
	Discount float64
	Image    string
}

// ProductUpdate holds the fields to change. Nil fields are left as they are.
type ProductUpdate struct {
	Name     *string
	Price    *float64
	Stock    *int
	Discount *float64
	Image    *string
}

// Products is the repository of Product entities
type Products struct {
	store   *Store
	logger  *zap.Logger
	metrics *Metrics
}

// NewProducts returns the product repository over store
func NewProducts(store *Store, logger *zap.Logger, metrics *Metrics) *Products {
	if logger == nil {
		logger = zap.NewNop()
	}
	if metrics == nil {
		metrics = NewMetrics(nil)
	}
	return &Products{store: store, logger: logger, metrics: metrics}
}

func projectProduct(g *graph.Graph, s ld.Node) (p Product, err error) {
	if p.ID, err = localID(s); err != nil {
		return
	}
	if p.Name, err = readString(g, s, types.Name); err != nil {
		return
	}
	if p.Price, err = readFloat(g, s, types.Price); err != nil {
		return
	}
	if p.Stock, err = readInt(g, s, types.StockLevel); err != nil {
		return
	}
	if p.Discount, err = floatOr(g, s, types.Discount, types.DefaultDiscount); err != nil {
		return
	}
	if p.Image, err = stringOr(g, s, types.HasImage, types.DefaultImage); err != nil {
		return
	}
	p.FinalPrice = types.FinalPrice(p.Price, p.Discount)
	return
}

// List returns every well-formed product, ordered by id
func (r *Products) List() (products []Product, err error) {
	err = r.store.View(func(g *graph.Graph) error {
		products = collect("product", subjectsOf(g, types.Product), func(s ld.Node) (Product, error) {
			return projectProduct(g, s)
		}, r.logger, r.metrics)
		return nil
	})
	return
}

func (r *Products) get(g *graph.Graph, id string) (*Product, error) {
	s := types.Subject(id)
	if id == "" || !isA(g, s, types.Product) {
		return nil, notFound("product", id)
	}
	p, err := projectProduct(g, s)
	if err != nil {
		return nil, err
	}
	return &p, nil
}

// Get returns the product with the given id
func (r *Products) Get(id string) (product *Product, err error) {
	err = r.store.View(func(g *graph.Graph) (err error) {
		product, err = r.get(g, id)
		return
	})
	return
}

func productByName(g *graph.Graph, name string) ld.Node {
	for _, s := range g.Subjects(types.IRI(types.Name), types.String(name)) {
		if isA(g, s, types.Product) {
			return s
		}
	}
	return nil
}

// ByName returns the product whose name literal equals name
func (r *Products) ByName(name string) (product *Product, err error) {
	err = r.store.View(func(g *graph.Graph) error {
		s := productByName(g, name)
		if s == nil {
			return notFound("product named", name)
		}
		p, err := projectProduct(g, s)
		if err != nil {
			return err
		}
		product = &p
		return nil
	})
	return
}

func validateProduct(name string, price float64, stock int, discount float64) error {
	if strings.TrimSpace(name) == "" {
		return invalid("name", "must not be empty")
	} else if !finite(price) {
		return invalid("price", "must be a finite number")
	} else if price < 0 {
		return invalid("price", "must not be negative")
	} else if stock < 0 {
		return invalid("stock_level", "must not be negative")
	} else if !finite(discount) || discount < 0 || discount > 100 {
		return invalid("discount", "must be between 0 and 100")
	}
	return nil
}

func finite(f float64) bool {
	return !math.IsNaN(f) && !math.IsInf(f, 0)
}

// Create adds a product whose id is the slug of its name. A slug that is
// already a product is rejected with ErrConflict.
func (r *Products) Create(input NewProduct) (product *Product, err error) {
	if err = validateProduct(input.Name, input.Price, input.Stock, input.Discount); err != nil {
		return
	}
	if input.Image == "" {
		input.Image = types.DefaultImage
	}

	id := types.Slug(input.Name)
	err = r.store.Update(func(g *graph.Graph) error {
		s := types.Subject(id)
		if isA(g, s, types.Product) {
			return fmt.Errorf("%w: product %q", ErrConflict, id)
		}
		g.Add(s, rdfType, types.IRI(types.Product))
		set(g, s, types.Name, types.String(input.Name))
		set(g, s, types.Price, types.Float(input.Price))
		set(g, s, types.StockLevel, types.Integer(input.Stock))
		set(g, s, types.Discount, types.Float(input.Discount))
		set(g, s, types.HasImage, types.String(input.Image))

		p, err := projectProduct(g, s)
		product = &p
		return err
	})
	if err != nil {
		product = nil
		return
	}
	r.logger.Info("Created product", zap.String("id", id))
	return
}

// Update changes the given fields of a product. The identifier stays fixed
// even when the name changes.
func (r *Products) Update(id string, u ProductUpdate) (product *Product, err error) {
	err = r.store.Update(func(g *graph.Graph) error {
		current, err := r.get(g, id)
		if err != nil {
			return err
		}

		next := *current
		if u.Name != nil {
			next.Name = *u.Name
		}
		if u.Price != nil {
			next.Price = *u.Price
		}
		if u.Stock != nil {
			next.Stock = *u.Stock
		}
		if u.Discount != nil {
			next.Discount = *u.Discount
		}
		if u.Image != nil {
			next.Image = *u.Image
		}
		if err := validateProduct(next.Name, next.Price, next.Stock, next.Discount); err != nil {
			return err
		}

		s := types.Subject(id)
		if next.Name != current.Name {
			set(g, s, types.Name, types.String(next.Name))
		}
		if next.Price != current.Price {
			set(g, s, types.Price, types.Float(next.Price))
		}
		if next.Stock != current.Stock {
			set(g, s, types.StockLevel, types.Integer(next.Stock))
		}
		if u.Discount != nil && next.Discount != current.Discount {
			set(g, s, types.Discount, types.Float(next.Discount))
		}
		if u.Image != nil && next.Image != current.Image {
			set(g, s, types.HasImage, types.String(next.Image))
		}

		next.FinalPrice = types.FinalPrice(next.Price, next.Discount)
		product = &next
		return nil
	})
	if err != nil {
		product = nil
	}
	return
}

// Delete removes every triple anchored at the product and returns the
// record as it was. The image file it names is left to the caller.
func (r *Products) Delete(id string) (product *Product, err error) {
	err = r.store.Update(func(g *graph.Graph) error {
		s := types.Subject(id)
		if id == "" || !isA(g, s, types.Product) {
			return notFound("product", id)
		}
		if p, err := projectProduct(g, s); err == nil {
			product = &p
		} else {
			product = &Product{ID: id}
			if node := g.Value(s, types.IRI(types.HasImage), nil); node != nil {
				product.Image, _ = types.AsString(node)
			}
		}
		n := g.RemoveSubject(s)
		r.logger.Info("Deleted product", zap.String("id", id), zap.Int("triples", n))
		return nil
	})
	if err != nil {
		product = nil
	}
	return
}
