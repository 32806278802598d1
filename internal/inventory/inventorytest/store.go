// Package inventorytest fornece um ProductStore em memória com injeção de falhas para testes.
package inventorytest

import (
	"context"
	"sort"
	"sync"

	"github.com/matheusmosca/sales-orders/internal/inventory"
	"github.com/matheusmosca/sales-orders/internal/sales"
)

// WriteHook é chamado antes de cada escrita individual, fora do lock.
// call é o número (a partir de 1) da chamada a ApplyStockDeltas. Um erro faz a escrita falhar.
type WriteHook func(call int, d inventory.StockDelta) error

// Store é um ProductStore em memória; cada escrita é atômica por produto
type Store struct {
	mu       sync.Mutex
	products map[int64]sales.Product
	calls    int

	// FindErr faz FindProductsByIDs falhar
	FindErr error
	// BeforeWrite permite simular concorrência e falhas por escrita
	BeforeWrite WriteHook
	// AfterFind é chamado depois da leitura, antes de retornar (janela entre pré-checagem e escrita)
	AfterFind func()
}

func NewStore(products ...sales.Product) *Store {
	s := &Store{products: make(map[int64]sales.Product, len(products))}
	for _, p := range products {
		s.products[p.ID] = p
	}
	return s
}

// Stock retorna o saldo atual do produto, ou -1 se ele não existir
func (s *Store) Stock(id int64) int {
	s.mu.Lock()
	defer s.mu.Unlock()
	p, ok := s.products[id]
	if !ok {
		return -1
	}
	return p.Stock
}

// SetStock altera o saldo diretamente, simulando outro processo
func (s *Store) SetStock(id int64, stock int) {
	s.mu.Lock()
	defer s.mu.Unlock()
	p := s.products[id]
	p.ID = id
	p.Stock = stock
	s.products[id] = p
}

// Delete remove um produto do catálogo
func (s *Store) Delete(id int64) {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.products, id)
}

// Calls retorna quantas vezes ApplyStockDeltas foi chamado
func (s *Store) Calls() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.calls
}

func (s *Store) FindProductsByIDs(_ context.Context, ids []int64) ([]sales.Product, error) {
	if s.FindErr != nil {
		return nil, s.FindErr
	}

	s.mu.Lock()
	found := make([]sales.Product, 0, len(ids))
	for _, id := range ids {
		if p, ok := s.products[id]; ok {
			found = append(found, p)
		}
	}
	s.mu.Unlock()

	sort.Slice(found, func(i, j int) bool { return found[i].ID < found[j].ID })
	if s.AfterFind != nil {
		s.AfterFind()
	}
	return found, nil
}

func (s *Store) ApplyStockDeltas(ctx context.Context, deltas []inventory.StockDelta, guarded bool) (inventory.WriteResult, error) {
	s.mu.Lock()
	s.calls++
	call := s.calls
	s.mu.Unlock()

	result := inventory.WriteResult{Attempted: len(deltas)}
	var firstErr error
	for _, d := range deltas {
		if err := ctx.Err(); err != nil {
			if firstErr == nil {
				firstErr = err
			}
			continue
		}
		if s.BeforeWrite != nil {
			if err := s.BeforeWrite(call, d); err != nil {
				if firstErr == nil {
					firstErr = err
				}
				continue
			}
		}
		if s.apply(d, guarded) {
			result.Applied = append(result.Applied, d)
		} else {
			result.Missed = append(result.Missed, d)
		}
	}
	return result, firstErr
}

func (s *Store) apply(d inventory.StockDelta, guarded bool) bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	p, ok := s.products[d.ProductID]
	if !ok {
		return false
	}
	if guarded && p.Stock+d.Delta < 0 {
		return false
	}
	p.Stock += d.Delta
	s.products[d.ProductID] = p
	return true
}

// Recorder guarda as movimentações registradas
type Recorder struct {
	mu        sync.Mutex
	Movements []inventory.Movement
	Err       error
}

func (r *Recorder) Record(_ context.Context, movements []inventory.Movement) error {
	if r.Err != nil {
		return r.Err
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	r.Movements = append(r.Movements, movements...)
	return nil
}

// ByType filtra as movimentações registradas de um tipo
func (r *Recorder) ByType(kind inventory.MovementType) []inventory.Movement {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []inventory.Movement
	for _, m := range r.Movements {
		if m.Type == kind {
			out = append(out, m)
		}
	}
	return out
}
