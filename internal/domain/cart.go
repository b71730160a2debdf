package domain

// LineKey identifies a cart line. A cart holds at most one line per key;
// adding the same shoe/size/color again merges quantities.
type LineKey struct {
	ShoeID uint64
	Size   string
	Color  string
}

type CartLine struct {
	ID       uint64 `json:"id" gorm:"primaryKey;autoIncrement"`
	UserID   uint64 `json:"userId" gorm:"not null;index"`
	ShoeID   uint64 `json:"shoeId" gorm:"not null;index"`
	Quantity int64  `json:"quantity" gorm:"not null"`
	Size     string `json:"size" gorm:"size:16;not null"`
	Color    string `json:"color" gorm:"size:32;not null"`
	Brand    string `json:"brand" gorm:"size:64"`

	// Hydrated from the catalog and the stock ledger, never persisted here.
	ShoeName      string `json:"shoeName" gorm:"-"`
	UnitPrice     int64  `json:"unitPrice" gorm:"-"`
	ShoeImage     string `json:"shoeImage" gorm:"-"`
	StockSnapshot int64  `json:"stockSnapshot" gorm:"-"`
}

func (CartLine) TableName() string { return "cart_items" }

func (l *CartLine) Key() LineKey {
	return LineKey{ShoeID: l.ShoeID, Size: l.Size, Color: l.Color}
}

func (l *CartLine) LineTotal() int64 {
	return l.UnitPrice * l.Quantity
}

// StockEntry is the ledger row backing availability checks. Read-only for
// the cart path; decremented only inside the checkout transaction.
type StockEntry struct {
	ShoeID   uint64 `json:"shoeId" gorm:"primaryKey;autoIncrement:false"`
	Size     string `json:"size" gorm:"primaryKey;size:16"`
	Quantity int64  `json:"quantity" gorm:"not null"`
}

func (StockEntry) TableName() string { return "shoe_sizes" }

// Shoe is the catalog row joined into the combined cart-with-stock read.
// Catalog management itself lives outside this service.
type Shoe struct {
	ID    uint64 `json:"id" gorm:"primaryKey;autoIncrement"`
	Name  string `json:"name" gorm:"size:200;not null"`
	Brand string `json:"brand" gorm:"size:64"`
	Price int64  `json:"price" gorm:"not null"`
	Image string `json:"image" gorm:"size:500"`
}

func (Shoe) TableName() string { return "shoes" }
