package sdi

import (
	"fmt"

	"github.com/beevik/etree"
)

// Tipi di notifica asincrona del SdI (elemento radice del messaggio).
const (
	NotificationRicevutaConsegna  = "RicevutaConsegna"
	NotificationScarto            = "NotificaScarto"
	NotificationMancataConsegna   = "NotificaMancataConsegna"
	NotificationDecorrenzaTermini = "NotificaDecorrenzaTermini"
	NotificationEsito             = "NotificaEsito"
)

// Esiti committente trasportati dalla NotificaEsito.
const (
	EsitoAccettato = "EC01"
	EsitoRifiutato = "EC02"
)

// Notification è la vista normalizzata di una notifica SdI.
type Notification struct {
	Type              string   // elemento radice del messaggio
	IdentificativoSdI string   // correlazione con la fattura trasmessa
	NomeFile          string   // nome del file fattura originario
	Errors            []string // lista errori di una NotificaScarto
	EsitoCommittente  string   // EC01/EC02 per la NotificaEsito
}

// ParseNotification interpreta il corpo XML di una notifica SdI.
// I messaggi reali arrivano con prefissi di namespace variabili per canale,
// quindi la ricerca degli elementi è per local name.
func ParseNotification(rawXML []byte) (*Notification, error) {
	doc := etree.NewDocument()
	if err := doc.ReadFromBytes(rawXML); err != nil {
		return nil, fmt.Errorf("XML della notifica non valido: %w", err)
	}

	root := doc.Root()
	if root == nil {
		return nil, fmt.Errorf("notifica vuota")
	}

	notif := &Notification{Type: root.Tag}
	switch notif.Type {
	case NotificationRicevutaConsegna,
		NotificationScarto,
		NotificationMancataConsegna,
		NotificationDecorrenzaTermini,
		NotificationEsito:
		// riconosciuta
	default:
		return nil, fmt.Errorf("tipo di notifica sconosciuto: %s", notif.Type)
	}

	notif.IdentificativoSdI = childText(root, "IdentificativoSdI")
	if notif.IdentificativoSdI == "" {
		return nil, fmt.Errorf("notifica %s senza IdentificativoSdI", notif.Type)
	}
	notif.NomeFile = childText(root, "NomeFile")

	if notif.Type == NotificationScarto {
		notif.Errors = collectScartoErrors(root)
	}
	if notif.Type == NotificationEsito {
		notif.EsitoCommittente = childText(root, "Esito")
		if notif.EsitoCommittente != EsitoAccettato && notif.EsitoCommittente != EsitoRifiutato {
			return nil, fmt.Errorf("NotificaEsito con esito committente non valido: %q", notif.EsitoCommittente)
		}
	}

	return notif, nil
}

// collectScartoErrors estrae la ListaErrori di una NotificaScarto in forma
// "Codice: Descrizione". Una lista vuota resta comunque uno scarto.
func collectScartoErrors(root *etree.Element) []string {
	var errs []string
	for _, errore := range findAllByLocalName(root, "Errore") {
		code := childText(errore, "Codice")
		desc := childText(errore, "Descrizione")
		switch {
		case code != "" && desc != "":
			errs = append(errs, code+": "+desc)
		case code != "":
			errs = append(errs, code)
		case desc != "":
			errs = append(errs, desc)
		}
	}
	if len(errs) == 0 {
		errs = append(errs, "scarto senza dettaglio errori")
	}
	return errs
}

// childText cerca in profondità il primo elemento con il local name dato e
// ne restituisce il testo.
func childText(el *etree.Element, local string) string {
	if found := findByLocalName(el, local); found != nil {
		return found.Text()
	}
	return ""
}

// etree separa il prefisso di namespace in Space: Tag è già il local name.
func findByLocalName(el *etree.Element, local string) *etree.Element {
	for _, child := range el.ChildElements() {
		if child.Tag == local {
			return child
		}
		if found := findByLocalName(child, local); found != nil {
			return found
		}
	}
	return nil
}

func findAllByLocalName(el *etree.Element, local string) []*etree.Element {
	var out []*etree.Element
	for _, child := range el.ChildElements() {
		if child.Tag == local {
			out = append(out, child)
		}
		out = append(out, findAllByLocalName(child, local)...)
	}
	return out
}
