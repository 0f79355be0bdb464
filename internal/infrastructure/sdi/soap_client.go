package sdi

import (
	"bytes"
	"context"
	"encoding/base64"
	"encoding/xml"
	"fmt"
	"io"
	"net/http"
	"time"
)

// Ambienti del canale SdICoop.
const (
	EnvironmentDev        = "dev"  // nessuna chiamata reale, trasmissione simulata
	EnvironmentTest       = "test" // testservizi.fatturapa.it
	EnvironmentProduction = "prod" // servizi.fatturapa.it
)

const (
	endpointTest       = "https://testservizi.fatturapa.it/ricevi_file"
	endpointProduction = "https://servizi.fatturapa.it/ricevi_file"

	soapAction  = "http://www.fatturapa.it/SdIRiceviFile/RiceviFile"
	nsRicezione = "http://www.fatturapa.gov.it/sdi/ws/ricezione/v1.0/types"
)

// Codici di scarto sincrono restituiti dal servizio RiceviFile.
var syncErrorMessages = map[string]string{
	"EI01": "EI01: file non leggibile",
	"EI02": "EI02: nome file duplicato",
	"EI03": "EI03: dimensione del file eccedente il limite",
}

// SubmitResult è l'esito normalizzato di una trasmissione al SdI.
type SubmitResult struct {
	ExternalID string   // IdentificativoSdI assegnato dal canale
	Accepted   bool     // true se il SdI ha preso in carico il file
	Errors     []string // scarti sincroni (EI01, EI02, EI03)
	RawRequest string   // snapshot della richiesta, per il registro tentativi
	RawReply   string   // snapshot della risposta
}

// Submitter è il client verso il canale di trasmissione SdI. Un errore di
// trasporto (rete, timeout, 5xx) si segnala con error; uno scarto sincrono
// del SdI si segnala con Accepted=false ed Errors valorizzata.
type Submitter interface {
	Submit(ctx context.Context, fileName string, xmlData []byte) (*SubmitResult, error)
}

// SOAPClient implementa Submitter sul servizio SdICoop RiceviFile.
type SOAPClient struct {
	httpClient  *http.Client
	environment string

	// endpointOverride sostituisce l'endpoint di default dell'ambiente
	// (configurazione SDI_ENDPOINT_* oppure server di test).
	endpointOverride string
}

// NewSOAPClient crea il client per l'ambiente indicato (test o prod).
// endpoint vuoto usa l'URL SdICoop di default dell'ambiente.
func NewSOAPClient(environment, endpoint string, timeout time.Duration) *SOAPClient {
	if timeout <= 0 {
		timeout = 60 * time.Second
	}
	return &SOAPClient{
		httpClient:       &http.Client{Timeout: timeout},
		environment:      environment,
		endpointOverride: endpoint,
	}
}

var _ Submitter = (*SOAPClient)(nil)

// ─── strutture SOAP ───

type soapEnvelope struct {
	XMLName xml.Name `xml:"soapenv:Envelope"`
	NsSoap  string   `xml:"xmlns:soapenv,attr"`
	NsTypes string   `xml:"xmlns:typ,attr"`
	Body    soapBody
}

type soapBody struct {
	XMLName xml.Name `xml:"soapenv:Body"`
	File    fileSdI
}

type fileSdI struct {
	XMLName  xml.Name `xml:"typ:fileSdIAccoglienza"`
	NomeFile string   `xml:"NomeFile"`
	File     string   `xml:"File"`
}

type soapResponseEnvelope struct {
	XMLName xml.Name `xml:"Envelope"`
	Body    struct {
		Fault    *soapFault        `xml:"Fault"`
		Risposta *rispostaSdIFault `xml:"rispostaSdIRiceviFile"`
	} `xml:"Body"`
}

type soapFault struct {
	Code   string `xml:"faultcode"`
	Reason string `xml:"faultstring"`
}

type rispostaSdIFault struct {
	IdentificativoSdI string `xml:"IdentificativoSdI"`
	DataOraRicezione  string `xml:"DataOraRicezione"`
	Errore            string `xml:"Errore"`
}

// Submit invia il file fattura al SdI e normalizza la risposta.
func (c *SOAPClient) Submit(ctx context.Context, fileName string, xmlData []byte) (*SubmitResult, error) {
	envelope := soapEnvelope{
		NsSoap:  "http://schemas.xmlsoap.org/soap/envelope/",
		NsTypes: nsRicezione,
		Body: soapBody{
			File: fileSdI{
				NomeFile: fileName,
				File:     base64.StdEncoding.EncodeToString(xmlData),
			},
		},
	}

	payload, err := xml.Marshal(envelope)
	if err != nil {
		return nil, fmt.Errorf("serializzazione busta SOAP: %w", err)
	}
	rawRequest := xml.Header + string(payload)

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.endpoint(), bytes.NewBufferString(rawRequest))
	if err != nil {
		return nil, fmt.Errorf("creazione richiesta SdI: %w", err)
	}
	req.Header.Set("Content-Type", "text/xml; charset=utf-8")
	req.Header.Set("SOAPAction", soapAction)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("chiamata al SdI: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("lettura risposta SdI: %w", err)
	}
	if resp.StatusCode >= http.StatusInternalServerError {
		return nil, fmt.Errorf("SdI ha risposto %d: %s", resp.StatusCode, string(body))
	}

	result := c.parseResponse(body)
	result.RawRequest = SnapshotRequest(fileName, len(xmlData))
	result.RawReply = string(body)
	return result, nil
}

func (c *SOAPClient) endpoint() string {
	if c.endpointOverride != "" {
		return c.endpointOverride
	}
	if c.environment == EnvironmentProduction {
		return endpointProduction
	}
	return endpointTest
}

// parseResponse distingue presa in carico, scarto sincrono e fault SOAP.
// Risposte non interpretabili diventano scarti, mai errori di trasporto:
// a questo punto il viaggio di rete è riuscito.
func (c *SOAPClient) parseResponse(body []byte) *SubmitResult {
	var envelope soapResponseEnvelope
	if err := xml.Unmarshal(body, &envelope); err != nil {
		return &SubmitResult{
			Accepted: false,
			Errors:   []string{fmt.Sprintf("risposta SdI non interpretabile: %v", err)},
		}
	}

	if envelope.Body.Fault != nil {
		return &SubmitResult{
			Accepted: false,
			Errors:   []string{fmt.Sprintf("fault SOAP %s: %s", envelope.Body.Fault.Code, envelope.Body.Fault.Reason)},
		}
	}

	risposta := envelope.Body.Risposta
	if risposta == nil {
		return &SubmitResult{
			Accepted: false,
			Errors:   []string{"risposta SdI senza esito di accoglienza"},
		}
	}
	if risposta.Errore != "" {
		msg, ok := syncErrorMessages[risposta.Errore]
		if !ok {
			msg = fmt.Sprintf("%s: scarto sincrono non catalogato", risposta.Errore)
		}
		return &SubmitResult{
			ExternalID: risposta.IdentificativoSdI,
			Accepted:   false,
			Errors:     []string{msg},
		}
	}

	return &SubmitResult{
		ExternalID: risposta.IdentificativoSdI,
		Accepted:   true,
	}
}

// SnapshotRequest registra il tentativo senza il contenuto base64 del file:
// l'XML completo vive già nello storage della fattura.
func SnapshotRequest(fileName string, size int) string {
	return fmt.Sprintf("RiceviFile NomeFile=%s dimensione=%d byte", fileName, size)
}
