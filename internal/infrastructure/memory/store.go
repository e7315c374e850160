// Package memory implementa el almacén de documentos en memoria con concurrencia optimista.
//
// Cada documento (producto o movimiento) vive bajo una ruta
// "workspaces/{ws}/products/{id}" o "workspaces/{ws}/movements/{id}" con una versión
// que cambia en cada escritura confirmada. Una transacción registra la versión de todo lo
// que lee (0 = ausente) y acumula sus escrituras en un buffer, visibles solo para ella.
// Al confirmar, bajo el mutex del almacén, se valida que ninguna versión leída haya cambiado;
// si alguna cambió se descarta todo y Run devuelve domain.ErrTxConflict.
//
// El mutex no se mantiene mientras corre el cuerpo de la transacción, de modo que
// transacciones concurrentes se intercalan libremente como en una base de datos real.
package memory

import (
	"context"
	"fmt"
	"sync"

	"github.com/roundspecs/hsbs/internal/application/ledger"
	"github.com/roundspecs/hsbs/internal/domain"
	"github.com/roundspecs/hsbs/internal/domain/entity"
	"github.com/roundspecs/hsbs/internal/domain/repository"
)

var _ ledger.TxRunner = (*Store)(nil)

type productDoc struct {
	data    entity.Product
	version uint64
}

type movementDoc struct {
	data    entity.Movement
	version uint64
}

// Store almacén en memoria; el valor cero no es utilizable, usar New.
type Store struct {
	mu        sync.RWMutex
	products  map[string]productDoc
	movements map[string]movementDoc
	clock     uint64 // última versión asignada
}

// New crea un almacén vacío.
func New() *Store {
	return &Store{
		products:  make(map[string]productDoc),
		movements: make(map[string]movementDoc),
	}
}

func productPath(workspaceID, id string) string {
	return "workspaces/" + workspaceID + "/products/" + id
}

func movementPath(workspaceID, id string) string {
	return "workspaces/" + workspaceID + "/movements/" + id
}

// Products repositorio fuera de transacción (lecturas y escrituras sobre el estado confirmado).
func (s *Store) Products() *ProductRepo { return &ProductRepo{s: s} }

// Movements repositorio fuera de transacción.
func (s *Store) Movements() *MovementRepo { return &MovementRepo{s: s} }

// Run ejecuta fn en una transacción optimista. Un error de fn descarta las escrituras sin validar nada.
func (s *Store) Run(ctx context.Context, fn func(
	movRepo repository.MovementRepository,
	productRepo repository.ProductRepository,
) error) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	tx := newTxn()
	if err := fn(&MovementRepo{s: s, tx: tx}, &ProductRepo{s: s, tx: tx}); err != nil {
		return err
	}
	if err := ctx.Err(); err != nil {
		return err
	}
	return s.commit(tx)
}

type txn struct {
	reads     map[string]uint64
	products  map[string]entity.Product
	movements map[string]entity.Movement
	// orden de escritura, para aplicar determinísticamente
	writes []string
}

func newTxn() *txn {
	return &txn{
		reads:     make(map[string]uint64),
		products:  make(map[string]entity.Product),
		movements: make(map[string]entity.Movement),
	}
}

func (t *txn) observe(path string, version uint64) {
	if _, ok := t.reads[path]; !ok {
		t.reads[path] = version
	}
}

func (t *txn) putProduct(path string, p entity.Product) {
	if _, ok := t.products[path]; !ok {
		t.writes = append(t.writes, path)
	}
	t.products[path] = p
}

func (t *txn) putMovement(path string, m entity.Movement) {
	if _, ok := t.movements[path]; !ok {
		t.writes = append(t.writes, path)
	}
	t.movements[path] = m
}

func (s *Store) versionLocked(path string) uint64 {
	if d, ok := s.products[path]; ok {
		return d.version
	}
	if d, ok := s.movements[path]; ok {
		return d.version
	}
	return 0
}

func (s *Store) commit(tx *txn) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	for path, seen := range tx.reads {
		if current := s.versionLocked(path); current != seen {
			return fmt.Errorf("%w: %s (leída v%d, actual v%d)", domain.ErrTxConflict, path, seen, current)
		}
	}

	s.clock++
	version := s.clock
	for _, path := range tx.writes {
		if p, ok := tx.products[path]; ok {
			s.products[path] = productDoc{data: p, version: version}
			continue
		}
		m := tx.movements[path]
		s.movements[path] = movementDoc{data: *m.Clone(), version: version}
	}
	return nil
}

// nextVersionLocked asigna versión a una escritura fuera de transacción.
func (s *Store) nextVersionLocked() uint64 {
	s.clock++
	return s.clock
}
