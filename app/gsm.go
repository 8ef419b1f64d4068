package app

import (
	"context"
	"fmt"

	secretmanager "cloud.google.com/go/secretmanager/apiv1"
	"cloud.google.com/go/secretmanager/apiv1/secretmanagerpb"
	gax "github.com/googleapis/gax-go/v2"
	log "github.com/sirupsen/logrus"
)

type SecretManagerClient interface {
	AccessSecretVersion(ctx context.Context, req *secretmanagerpb.AccessSecretVersionRequest, opts ...gax.CallOption) (*secretmanagerpb.AccessSecretVersionResponse, error)
	Close() error
}

var NewSecretManagerClient = func(ctx context.Context) (SecretManagerClient, error) {
	return secretmanager.NewClient(ctx)
}

func accessSecretVersion(client SecretManagerClient, name string) (string, error) {
	req := &secretmanagerpb.AccessSecretVersionRequest{
		Name: fmt.Sprintf("projects/%s/secrets/%s/versions/latest", Config.GoogleSecretManager.ProjectID, name),
	}

	result, err := client.AccessSecretVersion(context.Background(), req)
	if err != nil {
		return "", err
	}

	return string(result.Payload.Data), nil
}

// readSecret fills target from the named secret when target is still empty.
func readSecret(client SecretManagerClient, label string, secretName string, target *string) {
	if *target != "" {
		return
	}
	if secretName == "" {
		log.Debugf("[GSM] No secret configured for %s", label)
		return
	}

	log.Debugf("[GSM] Reading %s", label)
	value, err := accessSecretVersion(client, secretName)
	if err != nil {
		log.Fatalf("[GSM] Failed to access %s: %v", label, err)
	}
	*target = value
	log.Infof("[GSM] Successfully read %s", label)
}

func readKeysFromGSM() {
	if !Config.GoogleSecretManager.Enabled {
		log.Debug("[GSM] Google Secret Manager is disabled")
		return
	}

	if Config.GoogleSecretManager.ProjectID == "" {
		log.Fatalf("[GSM] ProjectID is empty")
	}

	client, err := NewSecretManagerClient(context.Background())
	if err != nil {
		log.Fatalf("[GSM] Failed to create secretmanager client: %v", err)
	}
	defer client.Close()

	readSecret(client, "mongo uri", Config.GoogleSecretManager.MongoSecretName, &Config.MongoDB.URI)

	// a KMS key needs no secret material
	if Config.Signer.GcpKmsKeyName != "" {
		return
	}
	readSecret(client, "signer private key", Config.GoogleSecretManager.PrivateKeySecretName, &Config.Signer.PrivateKey)
	if Config.Signer.PrivateKey == "" {
		readSecret(client, "signer mnemonic", Config.GoogleSecretManager.MnemonicSecretName, &Config.Signer.Mnemonic)
	}
}
