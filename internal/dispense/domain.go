package dispense

import "time"

// Record is an immutable log entry of stock issued to a department. The
// drugId is a weak reference: the descriptive fields are snapshotted at
// dispensing time so the record stays accurate if the item changes later.
type Record struct {
	ID                string    `db:"id" json:"id"`
	DrugID            int64     `db:"drug_id" json:"drugId"`
	DrugName          string    `db:"drug_name" json:"drugName"`
	Classification    string    `db:"classification" json:"classification"`
	SubClass          string    `db:"sub_class" json:"subClass"`
	Expiry            string    `db:"expiry" json:"expiry"`
	DrugUnit          string    `db:"drug_unit" json:"drugUnit"`
	Department        string    `db:"department" json:"department"`
	QuantityDispensed int64     `db:"quantity_dispensed" json:"quantityDispensed"`
	DateDispensed     time.Time `db:"date_dispensed" json:"dateDispensed"`
	ApprovedBy        string    `db:"approved_by" json:"approvedBy"`
}
