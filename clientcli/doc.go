// Package clientcli provides a client library for the snapvault photo API.
//
// The client registers uploads and edits with the server, then streams the
// file straight to the presigned URL the server hands back. Downloads work
// the same way in reverse. Requests identify the caller either with a bearer
// token or with a user id header when the server trusts a fronting proxy.
//
// # Basic Usage
//
//	client, err := clientcli.New(&clientcli.Config{
//		Server: "http://localhost:5708",
//		UserID: "alice",
//	})
//	if err != nil {
//		log.Fatal(err)
//	}
//
//	results, err := client.Upload(ctx, clientcli.UploadOptions{
//		LocalPath: "./beach.jpg",
//		Tags:      []string{"beach"},
//	})
//
// # Profile Configuration
//
// Profiles stored in ~/.snapvault/config.yaml keep settings for several
// servers:
//
//	configFile, err := clientcli.LoadConfigFile(clientcli.DefaultConfigPath())
//	if err != nil {
//		log.Fatal(err)
//	}
//
//	profile, err := configFile.GetProfile("production")
//	if err != nil {
//		log.Fatal(err)
//	}
//
//	client, err := clientcli.New(clientcli.ConfigFromProfile(profile))
//
// # Output Formatting
//
//	formatter := clientcli.NewFormatter(jsonOutput, quiet)
//	formatter.FormatUpload(os.Stdout, results)
package clientcli
