package sdi

import "crypto/tls"

// Signer applica la firma XAdES-BES enveloped richiesta dal SdI per il
// formato FatturaPA firmato (estensione .xml.p7m o XAdES inline).
type Signer interface {
	// Sign riceve l'XML della fattura e restituisce il documento firmato.
	Sign(xmlData []byte, cert tls.Certificate) ([]byte, error)
}
