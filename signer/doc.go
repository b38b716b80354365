// Package signer produces and checks the detached PKCS#7 signatures that seal
// a pass bundle.
//
// The signature covers the exact bytes of manifest.json. It is DER-encoded
// SignedData without embedded content, carrying the signing certificate and
// the trust chain certificate so wallets can build the chain offline.
//
// # Identities
//
// A signing identity is loaded from one of three credential forms:
//
//   - certificate and private key PEM files on disk
//   - certificate and private key PEM content held in memory
//   - a PKCS#12 bundle holding both
//
// The chain certificate is always supplied separately, as a file or as PEM
// content. Private keys may be unencrypted PKCS#8, PKCS#1 or SEC1 blocks, or
// legacy encrypted PEM blocks unlocked with the credential password.
//
// Example:
//
//	s, err := signer.New(signer.WithLogger(logger))
//	if err != nil {
//	    return err
//	}
//	sig, err := s.Sign(ctx, manifestJSON, passbook.Credentials{
//	    CertificateFile: "cert.pem",
//	    KeyFile:         "key.pem",
//	    ChainFile:       "wwdr.pem",
//	    Password:        passbook.StaticPassword("secret"),
//	})
//
// # Verification
//
// Verify parses a signature, reattaches the manifest and checks the signer's
// signature. When a root pool is given the signer certificate must also chain
// to one of its certificates.
package signer
