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
	"context"
	"crypto/tls"
	"crypto/x509"
	"fmt"
	"os"
	"sync"
	"time"

	log "github.com/sirupsen/logrus"
)

// CertReloader serves the TLS certificate at certPath and reloads it when the
// certificate or key file changes on disk.
type CertReloader struct {
	certPath string
	keyPath  string
	mu       sync.RWMutex
	cert     *tls.Certificate
	modTime  time.Time
}

const refreshInterval = 60 * time.Second

func NewCertReloader(certPath string, privateKeyPath string) (*CertReloader, error) {
	reloader := &CertReloader{
		certPath: certPath,
		keyPath:  privateKeyPath,
	}

	if err := reloader.reload(); err != nil {
		log.Errorf("NewCertReloader: Error loading certificate at %v with key at %v; err=%v",
			certPath, privateKeyPath, err)
		return nil, err
	}
	log.Infof("NewCertReloader: Successfully loaded certificate at %v with key at %v", certPath, privateKeyPath)

	return reloader, nil
}

// Watch polls the certificate files until ctx is done.
func (cr *CertReloader) Watch(ctx context.Context) {
	ticker := time.NewTicker(refreshInterval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			changed, err := cr.changed()
			if err != nil {
				log.Errorf("CertReloader.Watch: cannot stat %v or %v; err=%v", cr.certPath, cr.keyPath, err)
				continue
			}
			if !changed {
				continue
			}
			log.Infof("CertReloader.Watch: Reloading certificate at %v with key at %v", cr.certPath, cr.keyPath)
			if err := cr.reload(); err != nil {
				log.Errorf("CertReloader.Watch: Error reloading certificate; err=%v", err)
			}
		}
	}
}

func (cr *CertReloader) GetCertificate(*tls.ClientHelloInfo) (*tls.Certificate, error) {
	cr.mu.RLock()
	defer cr.mu.RUnlock()

	return cr.cert, nil
}

func (cr *CertReloader) latestModTime() (time.Time, error) {
	var latest time.Time
	for _, path := range []string{cr.certPath, cr.keyPath} {
		fi, err := os.Stat(path)
		if err != nil {
			return time.Time{}, err
		}
		if fi.ModTime().After(latest) {
			latest = fi.ModTime()
		}
	}
	return latest, nil
}

func (cr *CertReloader) changed() (bool, error) {
	latest, err := cr.latestModTime()
	if err != nil {
		return false, err
	}
	cr.mu.RLock()
	defer cr.mu.RUnlock()
	return latest.After(cr.modTime), nil
}

func (cr *CertReloader) reload() error {
	modTime, err := cr.latestModTime()
	if err != nil {
		return err
	}
	cert, err := tls.LoadX509KeyPair(cr.certPath, cr.keyPath)
	if err != nil {
		return fmt.Errorf("reload: loading certificate at %v with key at %v: %w", cr.certPath, cr.keyPath, err)
	}

	leaf, err := x509.ParseCertificate(cert.Certificate[0])
	if err != nil {
		return fmt.Errorf("reload: parsing certificate at %v: %w", cr.certPath, err)
	}

	now := time.Now()
	if now.Before(leaf.NotBefore) {
		return fmt.Errorf("reload: certificate at %v is not valid yet (not before: %v)",
			cr.certPath, leaf.NotBefore)
	}
	if now.After(leaf.NotAfter) {
		return fmt.Errorf("reload: certificate at %v has expired (not after: %v)",
			cr.certPath, leaf.NotAfter)
	}

	cr.mu.Lock()
	cr.cert = &cert
	cr.modTime = modTime
	cr.mu.Unlock()

	return nil
}
