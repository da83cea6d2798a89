// Command formcond renders, resolves, fills and validates conditional
// JSON Schema and OpenAPI forms.
//
// Usage:
//
//	formcond render --source address.schema.json --set country=US
//	formcond resolve --source address.schema.json --data answers.yaml
//	formcond fill --source orders.openapi.yaml --form createOrder
//	formcond validate --source address.schema.json
package main

import (
	"fmt"
	"os"
)

func main() {
	if err := newRootCmd(os.Stdin, os.Stdout).Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
