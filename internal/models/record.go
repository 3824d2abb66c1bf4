// Package models contains domain types for the attendance dashboard.
package models

import (
	"strings"
)

// Canonical column names of the persisted attendance table.
const (
	ColumnEmployee   = "Сотрудник"
	ColumnDate       = "Дата"
	ColumnTime       = "Время"
	ColumnCardNumber = "Карта №"
	ColumnDocument   = "Документ"
)

// TableColumns is the column order of the persisted table.
var TableColumns = []string{ColumnEmployee, ColumnDate, ColumnTime, ColumnCardNumber, ColumnDocument}

// Record represents a single card swipe imported from a document.
type Record struct {
	Employee   string   `json:"employee"`
	Date       NullDate `json:"date"`
	Time       NullTime `json:"time"`
	CardNumber string   `json:"cardNumber"`
	Document   string   `json:"document"` // Source file name
}

// Key returns the full-row identity used for de-duplication.
// Two records with equal keys are the same row.
func (r Record) Key() string {
	return strings.Join([]string{
		r.Employee,
		r.Date.String(),
		r.Time.String(),
		r.CardNumber,
		r.Document,
	}, "\x1f")
}

// DocumentInfo summarizes one imported document in the persisted table.
type DocumentInfo struct {
	Name string `json:"name"`
	Rows int    `json:"rows"`
}
