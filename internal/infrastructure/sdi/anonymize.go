package sdi

import (
	"fmt"

	"github.com/beevik/etree"
)

// anonymizedDenominazione è il segnaposto usato al posto dei dati
// identificativi del cessionario, allineato a entity.Customer.Anonymize.
const anonymizedDenominazione = "CLIENTE ANONIMIZZATO"

// AnonymizeCessionario riscrive il blocco CessionarioCommittente di una
// fattura archiviata sostituendo i dati identificativi del cliente con
// segnaposto neutri. Gli importi e i dati IVA restano intatti: la fattura
// conserva il proprio valore fiscale anche dopo l'anonimizzazione.
func AnonymizeCessionario(rawXML []byte) ([]byte, error) {
	doc := etree.NewDocument()
	if err := doc.ReadFromBytes(rawXML); err != nil {
		return nil, fmt.Errorf("xml fattura non valido: %w", err)
	}
	root := doc.Root()
	if root == nil {
		return nil, fmt.Errorf("xml fattura vuoto")
	}

	cessionari := findAllByLocalName(root, "CessionarioCommittente")
	if len(cessionari) == 0 {
		return nil, fmt.Errorf("blocco CessionarioCommittente assente")
	}
	for _, ces := range cessionari {
		anonymizeDatiAnagrafici(ces)
		anonymizeSede(ces)
	}

	return doc.WriteToBytes()
}

func anonymizeDatiAnagrafici(ces *etree.Element) {
	anag := findByLocalName(ces, "DatiAnagrafici")
	if anag == nil {
		return
	}
	if idFiscale := findByLocalName(anag, "IdFiscaleIVA"); idFiscale != nil {
		anag.RemoveChild(idFiscale)
	}
	if cf := findByLocalName(anag, "CodiceFiscale"); cf != nil {
		anag.RemoveChild(cf)
	}
	if anagrafica := findByLocalName(anag, "Anagrafica"); anagrafica != nil {
		for _, child := range anagrafica.ChildElements() {
			anagrafica.RemoveChild(child)
		}
		anagrafica.CreateElement("Denominazione").SetText(anonymizedDenominazione)
	}
}

// anonymizeSede azzera l'indirizzo mantenendo la Nazione, che resta
// necessaria per individuare il regime IVA applicato.
func anonymizeSede(ces *etree.Element) {
	sede := findByLocalName(ces, "Sede")
	if sede == nil {
		return
	}
	for _, child := range sede.ChildElements() {
		switch child.Tag {
		case "Indirizzo", "Comune":
			child.SetText("N.D.")
		case "CAP":
			child.SetText("00000")
		case "Provincia":
			sede.RemoveChild(child)
		}
	}
}
