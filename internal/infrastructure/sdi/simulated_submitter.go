package sdi

import (
	"context"
	"fmt"
	"sync/atomic"

	"github.com/rs/zerolog"
)

// SimulatedSubmitter è il canale di trasmissione per l'ambiente dev: non
// chiama il SdI, accetta sempre il file e assegna un identificativo fittizio.
// Permette di provare l'intero ciclo di vita della fattura senza certificati
// né accreditamento al canale.
type SimulatedSubmitter struct {
	log     zerolog.Logger
	counter atomic.Int64
}

// NewSimulatedSubmitter crea il canale simulato.
func NewSimulatedSubmitter(log zerolog.Logger) *SimulatedSubmitter {
	return &SimulatedSubmitter{log: log}
}

var _ Submitter = (*SimulatedSubmitter)(nil)

// Submit simula la presa in carico del file.
func (s *SimulatedSubmitter) Submit(ctx context.Context, fileName string, xmlData []byte) (*SubmitResult, error) {
	id := fmt.Sprintf("SIM%08d", s.counter.Add(1))
	s.log.Info().
		Str("file", fileName).
		Str("external_id", id).
		Int("bytes", len(xmlData)).
		Msg("trasmissione simulata (ambiente dev)")
	return &SubmitResult{
		ExternalID: id,
		Accepted:   true,
		RawRequest: SnapshotRequest(fileName, len(xmlData)),
		RawReply:   "simulazione: presa in carico senza invio al SdI",
	}, nil
}
