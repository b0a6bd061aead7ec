package webserver

import (
	"crypto/tls"
	"os"
	"sync"
	"time"

	"go.uber.org/zap"
)

// TLSReloader serves a certificate pair and picks up rotated files
// without a restart.
type TLSReloader struct {
	certFile    string
	keyFile     string
	cert        *tls.Certificate
	mu          sync.RWMutex
	lastModCert time.Time
	lastModKey  time.Time
	log         *zap.Logger
}

func NewTLSReloader(certFile, keyFile string, log *zap.Logger) (*TLSReloader, error) {
	reloader := &TLSReloader{
		certFile: certFile,
		keyFile:  keyFile,
		log:      log,
	}

	if err := reloader.reload(); err != nil {
		return nil, err
	}

	go reloader.watchFiles()

	return reloader, nil
}

func (r *TLSReloader) reload() error {
	cert, err := tls.LoadX509KeyPair(r.certFile, r.keyFile)
	if err != nil {
		return err
	}

	r.mu.Lock()
	r.cert = &cert
	r.mu.Unlock()

	certInfo, _ := os.Stat(r.certFile)
	keyInfo, _ := os.Stat(r.keyFile)

	if certInfo != nil {
		r.lastModCert = certInfo.ModTime()
	}
	if keyInfo != nil {
		r.lastModKey = keyInfo.ModTime()
	}

	r.log.Info("TLS certificates loaded")
	return nil
}

func (r *TLSReloader) watchFiles() {
	ticker := time.NewTicker(5 * time.Minute)
	defer ticker.Stop()

	for range ticker.C {
		certInfo, err := os.Stat(r.certFile)
		if err != nil {
			r.log.Warn("stat cert file failed", zap.Error(err))
			continue
		}

		keyInfo, err := os.Stat(r.keyFile)
		if err != nil {
			r.log.Warn("stat key file failed", zap.Error(err))
			continue
		}

		if certInfo.ModTime().After(r.lastModCert) || keyInfo.ModTime().After(r.lastModKey) {
			r.log.Info("certificate files changed, reloading")
			if err := r.reload(); err != nil {
				r.log.Error("certificate reload failed", zap.Error(err))
			}
		}
	}
}

func (r *TLSReloader) GetCertificate() func(*tls.ClientHelloInfo) (*tls.Certificate, error) {
	return func(hello *tls.ClientHelloInfo) (*tls.Certificate, error) {
		r.mu.RLock()
		defer r.mu.RUnlock()
		return r.cert, nil
	}
}

func (r *TLSReloader) GetConfig() *tls.Config {
	return &tls.Config{
		GetCertificate: r.GetCertificate(),
		MinVersion:     tls.VersionTLS12,
		CipherSuites: []uint16{
			tls.TLS_ECDHE_RSA_WITH_AES_256_GCM_SHA384,
			tls.TLS_ECDHE_RSA_WITH_AES_128_GCM_SHA256,
			tls.TLS_ECDHE_ECDSA_WITH_AES_256_GCM_SHA384,
			tls.TLS_ECDHE_ECDSA_WITH_AES_128_GCM_SHA256,
		},
	}
}
