package domain

// InventoryItem is one row of the flat equipment inventory. Quantity is
// free text: the ledger records things like "3 pares" alongside plain
// numbers.
type InventoryItem struct {
	ID       int64
	Name     string
	Brand    string
	Color    string
	Quantity string
	Status   string
	Location string
}
