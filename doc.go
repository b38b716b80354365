// Package passbook builds signed digital wallet pass bundles (.pkpass).
//
// A bundle is a zip container holding pass.json (the pass description),
// any number of flat asset files (icons, logos, strip images), manifest.json
// (the digest of every other member) and signature (a detached PKCS#7
// signature over manifest.json).
//
// # Basic Usage
//
// Describe the pass, add assets and create the bundle:
//
//	style := passbook.NewGeneric()
//	style.AddPrimaryField("balance", "10.00", "Balance")
//
//	pass := passbook.NewPass(style, passbook.Identity{
//	    TeamIdentifier:     "TEAMID1234",
//	    PassTypeIdentifier: "pass.com.example.member",
//	    OrganizationName:   "Example",
//	    SerialNumber:       passbook.NewSerialNumber(),
//	    Description:        "Membership card",
//	})
//	if err := pass.AddFS(os.DirFS("./assets")); err != nil {
//	    log.Fatal(err)
//	}
//
//	bundle, err := pass.Create(ctx, passbook.Credentials{
//	    CertificateFile: "cert.pem",
//	    KeyFile:         "key.pem",
//	    ChainFile:       "wwdr.pem",
//	    Password:        passbook.StaticPassword("secret"),
//	})
//
// # Pipeline
//
// Create runs four stages in order: serialize pass.json, build the manifest,
// sign the manifest, write the archive. A failing stage stops the pipeline,
// so a credential problem never leaves a partial bundle behind.
//
// Use NewBuilder to change collaborators: WithSigner and WithVerifier
// replace the PKCS#7 implementation, WithDigestAlgorithm changes the manifest
// digest, and WithCompression or WithArchiveFactory change the container.
//
// # Verification
//
// Builder.Verify reopens a bundle, recomputes every member digest, checks
// that the manifest lists exactly the members present and verifies the
// signature, optionally against trusted roots:
//
//	result, err := builder.Verify(ctx, data, passbook.WithRoots(pool))
package passbook
