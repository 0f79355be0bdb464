package sdi

import (
	"context"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const rispostaAccoglienza = `<?xml version="1.0" encoding="UTF-8"?>
<soapenv:Envelope xmlns:soapenv="http://schemas.xmlsoap.org/soap/envelope/">
  <soapenv:Body>
    <ns2:rispostaSdIRiceviFile xmlns:ns2="http://www.fatturapa.gov.it/sdi/ws/ricezione/v1.0/types">
      <IdentificativoSdI>12345678</IdentificativoSdI>
      <DataOraRicezione>2026-03-10T11:30:00</DataOraRicezione>
    </ns2:rispostaSdIRiceviFile>
  </soapenv:Body>
</soapenv:Envelope>`

const rispostaScartoSincrono = `<?xml version="1.0" encoding="UTF-8"?>
<soapenv:Envelope xmlns:soapenv="http://schemas.xmlsoap.org/soap/envelope/">
  <soapenv:Body>
    <ns2:rispostaSdIRiceviFile xmlns:ns2="http://www.fatturapa.gov.it/sdi/ws/ricezione/v1.0/types">
      <IdentificativoSdI>0</IdentificativoSdI>
      <DataOraRicezione>2026-03-10T11:30:00</DataOraRicezione>
      <Errore>EI02</Errore>
    </ns2:rispostaSdIRiceviFile>
  </soapenv:Body>
</soapenv:Envelope>`

const rispostaFault = `<?xml version="1.0" encoding="UTF-8"?>
<soapenv:Envelope xmlns:soapenv="http://schemas.xmlsoap.org/soap/envelope/">
  <soapenv:Body>
    <soapenv:Fault>
      <faultcode>soapenv:Client</faultcode>
      <faultstring>Messaggio non conforme</faultstring>
    </soapenv:Fault>
  </soapenv:Body>
</soapenv:Envelope>`

func TestParseResponse_PresaInCarico(t *testing.T) {
	client := NewSOAPClient(EnvironmentTest, "", 0)

	result := client.parseResponse([]byte(rispostaAccoglienza))

	assert.True(t, result.Accepted)
	assert.Equal(t, "12345678", result.ExternalID)
	assert.Empty(t, result.Errors)
}

func TestParseResponse_ScartoSincrono(t *testing.T) {
	client := NewSOAPClient(EnvironmentTest, "", 0)

	result := client.parseResponse([]byte(rispostaScartoSincrono))

	assert.False(t, result.Accepted)
	require.Len(t, result.Errors, 1)
	assert.Equal(t, "EI02: nome file duplicato", result.Errors[0])
}

func TestParseResponse_FaultSOAP(t *testing.T) {
	client := NewSOAPClient(EnvironmentTest, "", 0)

	result := client.parseResponse([]byte(rispostaFault))

	assert.False(t, result.Accepted)
	require.Len(t, result.Errors, 1)
	assert.Contains(t, result.Errors[0], "Messaggio non conforme")
}

func TestParseResponse_RispostaNonInterpretabile(t *testing.T) {
	client := NewSOAPClient(EnvironmentTest, "", 0)

	result := client.parseResponse([]byte("502 Bad Gateway"))

	assert.False(t, result.Accepted, "una risposta illeggibile non è una presa in carico")
	require.Len(t, result.Errors, 1)
}

func TestSubmit_CostruisceBustaRiceviFile(t *testing.T) {
	var gotAction, gotBody string
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotAction = r.Header.Get("SOAPAction")
		body, _ := io.ReadAll(r.Body)
		gotBody = string(body)
		w.Header().Set("Content-Type", "text/xml")
		_, _ = w.Write([]byte(rispostaAccoglienza))
	}))
	defer server.Close()

	client := NewSOAPClient(EnvironmentTest, server.URL, 5*time.Second)

	result, err := client.Submit(context.Background(), "IT01234567890_00001.xml", []byte("<FatturaElettronica/>"))
	require.NoError(t, err)

	assert.True(t, result.Accepted)
	assert.Equal(t, "12345678", result.ExternalID)
	assert.Equal(t, soapAction, gotAction)
	assert.Contains(t, gotBody, "<NomeFile>IT01234567890_00001.xml</NomeFile>")
	assert.Contains(t, gotBody, "fileSdIAccoglienza")
	assert.Equal(t, rispostaAccoglienza, result.RawReply)
}

func TestSubmit_ErroreHTTP5xx(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "manutenzione in corso", http.StatusServiceUnavailable)
	}))
	defer server.Close()

	client := NewSOAPClient(EnvironmentTest, server.URL, 5*time.Second)

	_, err := client.Submit(context.Background(), "IT01234567890_00001.xml", []byte("<FatturaElettronica/>"))
	assert.Error(t, err, "un 5xx del canale è un errore di trasporto, non uno scarto")
}
