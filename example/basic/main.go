package main

import (
	"errors"
	"fmt"
	"log"
	"os"

	"github.com/hatsunemiku3939/docschema"
)

// An invoice with three independent faults: an unknown currency and two
// unknown country codes.
var invoice = []byte(`{
  "$schema": "https://schemas.docschema.dev/v0/bill/invoice",
  "type": "standard",
  "issue_date": "2024-03-01",
  "currency": "XXX",
  "supplier": {"name": "Provide One S.L.", "tax_id": {"country": "ZZ", "code": "B98602642"}},
  "customer": {"name": "Sample Consumer", "tax_id": {"country": "QQ"}}
}`)

func main() {
	v, err := docschema.New()
	if err != nil {
		log.Fatalf("Could not initialize validator: %v", err)
	}

	err = v.Validate(invoice)
	if err == nil {
		fmt.Println("invoice is valid")
		return
	}

	var verr *docschema.Error
	if !errors.As(err, &verr) || verr.Kind != docschema.FailSchemaViolation {
		log.Fatalf("Could not validate invoice: %v", err)
	}

	r := verr.Report()
	for _, path := range r.Paths() {
		for _, msg := range r.Messages(path) {
			fmt.Printf("%-28s %s\n", path, msg)
		}
	}
	os.Exit(1)
}
