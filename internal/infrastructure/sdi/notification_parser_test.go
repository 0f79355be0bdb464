package sdi

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseNotification_RicevutaConsegna(t *testing.T) {
	raw := []byte(`<?xml version="1.0" encoding="UTF-8"?>
<ns3:RicevutaConsegna xmlns:ns3="http://ivaservizi.agenziaentrate.gov.it/docs/xsd/fatture/messaggi/v1.0">
  <IdentificativoSdI>12345678</IdentificativoSdI>
  <NomeFile>IT01234567890_00001.xml</NomeFile>
  <DataOraRicezione>2026-03-10T11:30:00</DataOraRicezione>
</ns3:RicevutaConsegna>`)

	notif, err := ParseNotification(raw)
	require.NoError(t, err)
	assert.Equal(t, NotificationRicevutaConsegna, notif.Type)
	assert.Equal(t, "12345678", notif.IdentificativoSdI)
	assert.Equal(t, "IT01234567890_00001.xml", notif.NomeFile)
	assert.Empty(t, notif.Errors)
}

func TestParseNotification_ScartoConListaErrori(t *testing.T) {
	raw := []byte(`<NotificaScarto>
  <IdentificativoSdI>98765432</IdentificativoSdI>
  <NomeFile>IT01234567890_00002.xml</NomeFile>
  <ListaErrori>
    <Errore>
      <Codice>00301</Codice>
      <Descrizione>IdFiscaleIVA del CedentePrestatore non valido</Descrizione>
    </Errore>
    <Errore>
      <Codice>00311</Codice>
      <Descrizione>CodiceDestinatario non valido</Descrizione>
    </Errore>
  </ListaErrori>
</NotificaScarto>`)

	notif, err := ParseNotification(raw)
	require.NoError(t, err)
	assert.Equal(t, NotificationScarto, notif.Type)
	require.Len(t, notif.Errors, 2)
	assert.Equal(t, "00301: IdFiscaleIVA del CedentePrestatore non valido", notif.Errors[0])
	assert.Equal(t, "00311: CodiceDestinatario non valido", notif.Errors[1])
}

func TestParseNotification_ScartoSenzaDettaglio(t *testing.T) {
	raw := []byte(`<NotificaScarto>
  <IdentificativoSdI>11122233</IdentificativoSdI>
</NotificaScarto>`)

	notif, err := ParseNotification(raw)
	require.NoError(t, err)
	require.Len(t, notif.Errors, 1)
	assert.Equal(t, "scarto senza dettaglio errori", notif.Errors[0])
}

func TestParseNotification_MancataConsegnaEDecorrenza(t *testing.T) {
	for _, tag := range []string{"NotificaMancataConsegna", "NotificaDecorrenzaTermini"} {
		raw := []byte(`<` + tag + `><IdentificativoSdI>555</IdentificativoSdI></` + tag + `>`)
		notif, err := ParseNotification(raw)
		require.NoError(t, err, "la notifica %s deve essere riconosciuta", tag)
		assert.Equal(t, tag, notif.Type)
		assert.Equal(t, "555", notif.IdentificativoSdI)
	}
}

func TestParseNotification_EsitoCommittente(t *testing.T) {
	raw := []byte(`<NotificaEsito>
  <IdentificativoSdI>424242</IdentificativoSdI>
  <EsitoCommittente>
    <Esito>EC01</Esito>
  </EsitoCommittente>
</NotificaEsito>`)

	notif, err := ParseNotification(raw)
	require.NoError(t, err)
	assert.Equal(t, NotificationEsito, notif.Type)
	assert.Equal(t, EsitoAccettato, notif.EsitoCommittente)
}

func TestParseNotification_EsitoNonValido(t *testing.T) {
	raw := []byte(`<NotificaEsito>
  <IdentificativoSdI>424242</IdentificativoSdI>
  <EsitoCommittente><Esito>EC99</Esito></EsitoCommittente>
</NotificaEsito>`)

	_, err := ParseNotification(raw)
	assert.Error(t, err, "un esito committente fuori catalogo deve essere rifiutato")
}

func TestParseNotification_TipoSconosciuto(t *testing.T) {
	_, err := ParseNotification([]byte(`<AttestazioneTrasmissioneFattura><IdentificativoSdI>1</IdentificativoSdI></AttestazioneTrasmissioneFattura>`))
	assert.Error(t, err)
}

func TestParseNotification_SenzaIdentificativo(t *testing.T) {
	_, err := ParseNotification([]byte(`<RicevutaConsegna><NomeFile>x.xml</NomeFile></RicevutaConsegna>`))
	assert.Error(t, err, "una notifica senza IdentificativoSdI non è correlabile")
}

func TestParseNotification_XMLNonValido(t *testing.T) {
	_, err := ParseNotification([]byte(`<RicevutaConsegna><IdentificativoSdI>1`))
	assert.Error(t, err)
}
