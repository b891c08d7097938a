package types

// Namespace is the fixed prefix of every ontology identifier
const Namespace = "http://www.example.org/ecommerce_ontology#"

// RDFNamespace is the RDF syntax namespace
const RDFNamespace = "http://www.w3.org/1999/02/22-rdf-syntax-ns#"

// XSDNamespace is the XML Schema datatype namespace
const XSDNamespace = "http://www.w3.org/2001/XMLSchema#"

// RDFType is the rdf:type predicate
const RDFType = RDFNamespace + "type"

// XSD datatypes used by the ontology literals
const (
	XSDString   = XSDNamespace + "string"
	XSDInteger  = XSDNamespace + "integer"
	XSDFloat    = XSDNamespace + "float"
	XSDDouble   = XSDNamespace + "double"
	XSDDecimal  = XSDNamespace + "decimal"
	XSDDateTime = XSDNamespace + "dateTime"
)

// Type URIs
const (
	Product  = Namespace + "Product"
	Order    = Namespace + "Order"
	Feedback = Namespace + "Feedback"
)

// Product predicates
const (
	Name       = Namespace + "name"
	Price      = Namespace + "price"
	StockLevel = Namespace + "stockLevel"
	Discount   = Namespace + "discount"
	HasImage   = Namespace + "hasImage"
)

// Order predicates. Price is shared with products and holds the
// final price frozen at the time the order was placed.
const (
	Customer  = Namespace + "customer"
	OfProduct = Namespace + "product"
	Quantity  = Namespace + "quantity"
	Status    = Namespace + "status"
	OrderDate = Namespace + "orderDate"
)

// Feedback predicates
const (
	FeedbackUser   = Namespace + "feedbackUser"
	UserEmail      = Namespace + "userEmail"
	Rating         = Namespace + "rating"
	Comment        = Namespace + "comment"
	SubmissionDate = Namespace + "submissionDate"
)

// Defaults applied when an optional field is absent
const (
	DefaultImage    = "default_image.jpg"
	DefaultStatus   = "pending"
	DefaultDiscount = 0.0
)

// Predicates lists every predicate in the vocabulary, in declaration order
var Predicates = []string{
	Name, Price, StockLevel, Discount, HasImage,
	Customer, OfProduct, Quantity, Status, OrderDate,
	FeedbackUser, UserEmail, Rating, Comment, SubmissionDate,
}

// Kinds lists every entity type URI
var Kinds = []string{Product, Order, Feedback}
