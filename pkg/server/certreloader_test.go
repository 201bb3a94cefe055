/*
Copyright 2023.

Licensed under the Apache License, Version 2.0 (the "License");
you may not use this file except in compliance with the License.
You may obtain a copy of the License at

    http://www.apache.org/licenses/LICENSE-2.0

Unless required by applicable law or agreed to in writing, software
distributed under the License is distributed on an "AS IS" BASIS,
WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
See the License for the specific language governing permissions and
limitations under the License.
*/

package server

import (
	"crypto/ecdsa"
	"crypto/elliptic"
	"crypto/rand"
	"crypto/x509"
	"crypto/x509/pkix"
	"encoding/pem"
	"math/big"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeTestCert(t *testing.T, dir string, notBefore time.Time, notAfter time.Time) (string, string) {
	key, err := ecdsa.GenerateKey(elliptic.P256(), rand.Reader)
	require.NoError(t, err)
	tmpl := &x509.Certificate{
		SerialNumber: big.NewInt(1),
		Subject:      pkix.Name{CommonName: "localhost"},
		NotBefore:    notBefore,
		NotAfter:     notAfter,
	}
	der, err := x509.CreateCertificate(rand.Reader, tmpl, tmpl, &key.PublicKey, key)
	require.NoError(t, err)
	keyDer, err := x509.MarshalECPrivateKey(key)
	require.NoError(t, err)

	certPath := filepath.Join(dir, "cert.pem")
	keyPath := filepath.Join(dir, "key.pem")
	require.NoError(t, os.WriteFile(certPath, pem.EncodeToMemory(&pem.Block{Type: "CERTIFICATE", Bytes: der}), 0600))
	require.NoError(t, os.WriteFile(keyPath, pem.EncodeToMemory(&pem.Block{Type: "EC PRIVATE KEY", Bytes: keyDer}), 0600))
	return certPath, keyPath
}

func Test_CertReloader(t *testing.T) {
	dir := t.TempDir()
	now := time.Now()
	certPath, keyPath := writeTestCert(t, dir, now.Add(-time.Hour), now.Add(time.Hour))

	cr, err := NewCertReloader(certPath, keyPath)
	require.NoError(t, err)
	cert, err := cr.GetCertificate(nil)
	require.NoError(t, err)
	assert.NotNil(t, cert)

	changed, err := cr.changed()
	require.NoError(t, err)
	assert.False(t, changed)

	later := now.Add(time.Minute)
	require.NoError(t, os.Chtimes(certPath, later, later))
	changed, err = cr.changed()
	require.NoError(t, err)
	assert.True(t, changed)
}

func Test_CertReloader_Expired(t *testing.T) {
	dir := t.TempDir()
	now := time.Now()
	certPath, keyPath := writeTestCert(t, dir, now.Add(-2*time.Hour), now.Add(-time.Hour))

	_, err := NewCertReloader(certPath, keyPath)
	assert.Error(t, err)

	_, err = NewCertReloader(filepath.Join(dir, "missing.pem"), keyPath)
	assert.Error(t, err)
}
