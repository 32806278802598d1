package sales

import (
	"bytes"
	"encoding/json"
	"strconv"
	"strings"
)

// ProductRef aceita o productId como número JSON ou string numérica e resolve para a chave inteira
type ProductRef int64

func (r *ProductRef) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	if len(data) > 0 && data[0] == '"' {
		var s string
		if err := json.Unmarshal(data, &s); err != nil {
			return err
		}
		id, err := strconv.ParseInt(strings.TrimSpace(s), 10, 64)
		if err != nil {
			return Validation("productId must be an integer", map[string]any{"productId": s})
		}
		*r = ProductRef(id)
		return nil
	}

	var id int64
	if err := json.Unmarshal(data, &id); err != nil {
		return Validation("productId must be an integer", map[string]any{"productId": string(data)})
	}
	*r = ProductRef(id)
	return nil
}

// Consolidate soma as quantidades de productIds repetidos.
// A ordem da primeira ocorrência de cada produto é preservada.
func Consolidate(items []LineItem) ([]LineItem, error) {
	if len(items) == 0 {
		return nil, Validation("order must contain at least one product", nil)
	}

	index := make(map[int64]int, len(items))
	out := make([]LineItem, 0, len(items))
	for i, item := range items {
		if item.ProductID <= 0 {
			return nil, Validation("productId must be a positive integer", map[string]any{"index": i, "productId": item.ProductID})
		}
		if item.Quantity <= 0 {
			return nil, Validation("quantity must be greater than 0", map[string]any{"index": i, "productId": item.ProductID, "quantity": item.Quantity})
		}
		if pos, ok := index[item.ProductID]; ok {
			out[pos].Quantity += item.Quantity
			continue
		}
		index[item.ProductID] = len(out)
		out = append(out, item)
	}
	return out, nil
}

// Quantities converte itens (já consolidados ou não) em um mapa productId -> quantidade total
func Quantities(items []LineItem) map[int64]int {
	q := make(map[int64]int, len(items))
	for _, item := range items {
		q[item.ProductID] += item.Quantity
	}
	return q
}
