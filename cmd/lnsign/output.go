package main

import (
	"encoding/json"
	"fmt"
)

func printJson(v interface{}) error {
	b, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return fmt.Errorf("json.MarshalIndent() error: %w", err)
	}

	fmt.Println(string(b))
	return nil
}
