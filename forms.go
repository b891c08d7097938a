package ontoshop

import (
	"strconv"
	"strings"
)

// ProductForm is the raw input of the product creation form
type ProductForm struct {
	Name       string
	Price      string
	StockLevel string
	Discount   string
}

// Upload is an uploaded image file
type Upload struct {
	Name string
	Data []byte
}

// OrderForm is the raw input of the order form. The product is named by id
// if one is given, else by its name.
type OrderForm struct {
	ProductID   string
	ProductName string
	Quantity    string
}

// FeedbackForm is the raw input of the feedback form
type FeedbackForm struct {
	Email   string
	Rating  string
	Comment string
}

func parseFloat(field, value string, optional bool) (float64, error) {
	value = strings.TrimSpace(value)
	if value == "" && optional {
		return 0, nil
	}
	f, err := strconv.ParseFloat(value, 64)
	if err != nil {
		return 0, invalid(field, "must be a number")
	} else if !finite(f) {
		return 0, invalid(field, "must be a finite number")
	}
	return f, nil
}

func parseInt(field, value string) (int, error) {
	i, err := strconv.Atoi(strings.TrimSpace(value))
	if err != nil {
		return 0, invalid(field, "must be a whole number")
	}
	return i, nil
}

// Parse converts the form strings. Discount may be left blank.
func (f ProductForm) Parse() (p NewProduct, err error) {
	p.Name = strings.TrimSpace(f.Name)
	if p.Name == "" {
		return p, invalid("name", "must not be empty")
	}
	if p.Price, err = parseFloat("price", f.Price, false); err != nil {
		return
	}
	if p.Stock, err = parseInt("stock_level", f.StockLevel); err != nil {
		return
	}
	p.Discount, err = parseFloat("discount", f.Discount, true)
	return
}

// Parse converts the quantity
func (f OrderForm) Parse() (int, error) {
	return parseInt("quantity", f.Quantity)
}

// Parse converts the form strings into a submission by user
func (f FeedbackForm) Parse(user string) (NewFeedback, error) {
	rating, err := parseInt("rating", f.Rating)
	if err != nil {
		return NewFeedback{}, err
	}
	return NewFeedback{
		User:    user,
		Email:   strings.TrimSpace(f.Email),
		Rating:  rating,
		Comment: f.Comment,
	}, nil
}
