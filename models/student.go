package models

import "time"

// Student is the payer. Enrollment and academics live elsewhere in the
// platform; payments only need identity and contact details.
type Student struct {
	ID        string    `bson:"id" json:"id"`
	StudentNo string    `bson:"studentNo" json:"studentNo"`
	FullName  string    `bson:"fullName" json:"fullName"`
	Phone     string    `bson:"phone,omitempty" json:"phone,omitempty"`
	Email     string    `bson:"email,omitempty" json:"email,omitempty"`
	CreatedAt time.Time `bson:"createdAt" json:"createdAt"`
	UpdatedAt time.Time `bson:"updatedAt" json:"updatedAt"`
}
