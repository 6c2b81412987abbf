package validators_test

import (
	"testing"

	"github.com/opsgate/opsgate/internal/domain"
	"github.com/opsgate/opsgate/internal/domain/validators"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSecurityValidator_EncryptionDisabled(t *testing.T) {
	v := validators.NewSecurityValidator()

	results := v.Validate(domain.ResourceConfig{"encryption_enabled": false}, nil)

	require.Len(t, results, 1)
	assert.Equal(t, domain.SeverityError, results[0].Severity)
	assert.Equal(t, "encryption_enabled", results[0].PropertyName)
	assert.Equal(t, "security", results[0].Source)
}

func TestSecurityValidator_StorageWithoutEncryptionDeclared(t *testing.T) {
	v := validators.NewSecurityValidator()

	results := v.Validate(domain.ResourceConfig{"resource_type": "bucket"}, nil)

	require.Len(t, results, 1)
	assert.Contains(t, results[0].Message, "does not declare encryption")
}

func TestSecurityValidator_ComputeWithoutEncryptionIsFine(t *testing.T) {
	v := validators.NewSecurityValidator()
	assert.Empty(t, v.Validate(domain.ResourceConfig{"resource_type": "function"}, nil))
}

func TestSecurityValidator_WildcardIAMPolicy(t *testing.T) {
	v := validators.NewSecurityValidator()
	rc := domain.ResourceConfig{
		"iam_policies": []any{
			map[string]any{
				"name": "admin-everything",
				"statements": []any{
					map[string]any{
						"effect":    "Allow",
						"actions":   []any{"*"},
						"resources": []any{"*"},
					},
				},
			},
		},
	}

	results := v.Validate(rc, nil)

	require.Len(t, results, 1)
	assert.Equal(t, domain.SeverityError, results[0].Severity)
	assert.Contains(t, results[0].Message, "admin-everything")
}

func TestSecurityValidator_ScopedIAMPolicyPasses(t *testing.T) {
	v := validators.NewSecurityValidator()
	rc := domain.ResourceConfig{
		"iam_policies": []any{
			map[string]any{
				"name": "read-bucket",
				"statements": []any{
					map[string]any{
						"effect":    "Allow",
						"actions":   []any{"s3:GetObject"},
						"resources": []any{"*"},
					},
				},
			},
		},
	}
	assert.Empty(t, v.Validate(rc, nil))
}

func TestSecurityValidator_CrossAccountTrustWithoutCondition(t *testing.T) {
	v := validators.NewSecurityValidator()
	rc := domain.ResourceConfig{
		"account_id": "111111111111",
		"trust_policy": map[string]any{
			"statements": []any{
				map[string]any{
					"principal": "arn:aws:iam::222222222222:root",
				},
			},
		},
	}

	results := v.Validate(rc, nil)

	require.Len(t, results, 1)
	assert.Contains(t, results[0].Message, "cross-account trust")
}

func TestSecurityValidator_CrossAccountTrustWithExternalID(t *testing.T) {
	v := validators.NewSecurityValidator()
	rc := domain.ResourceConfig{
		"account_id": "111111111111",
		"trust_policy": map[string]any{
			"statements": []any{
				map[string]any{
					"principal": "arn:aws:iam::222222222222:root",
					"condition": map[string]any{
						"StringEquals": map[string]any{"sts:ExternalId": "pipeline-7"},
					},
				},
			},
		},
	}
	assert.Empty(t, v.Validate(rc, nil))
}

func TestSecurityValidator_SameAccountTrustIsFine(t *testing.T) {
	v := validators.NewSecurityValidator()
	rc := domain.ResourceConfig{
		"account_id": "111111111111",
		"trust_policy": map[string]any{
			"statements": []any{
				map[string]any{"principal": "arn:aws:iam::111111111111:role/deployer"},
			},
		},
	}
	assert.Empty(t, v.Validate(rc, nil))
}

func TestSecurityValidator_OpenIngressOnSensitivePort(t *testing.T) {
	v := validators.NewSecurityValidator()
	rc := domain.ResourceConfig{
		"ingress_rules": []any{
			map[string]any{
				"from_port":   22,
				"to_port":     22,
				"protocol":    "tcp",
				"cidr_blocks": []any{"0.0.0.0/0"},
			},
		},
	}

	results := v.Validate(rc, nil)

	require.Len(t, results, 1)
	assert.Equal(t, domain.SeverityError, results[0].Severity)
	assert.Contains(t, results[0].Message, "SSH port 22")
}

func TestSecurityValidator_AllProtocolsExposesEveryPort(t *testing.T) {
	v := validators.NewSecurityValidator()
	rc := domain.ResourceConfig{
		"ingress_rules": []any{
			map[string]any{"protocol": "-1", "cidr_blocks": []any{"::/0"}},
		},
	}

	results := v.Validate(rc, nil)
	assert.Len(t, results, 7, "one finding per sensitive port")
}

func TestSecurityValidator_RestrictedIngressPasses(t *testing.T) {
	v := validators.NewSecurityValidator()
	rc := domain.ResourceConfig{
		"ingress_rules": []any{
			map[string]any{
				"from_port":   5432,
				"to_port":     5432,
				"protocol":    "tcp",
				"cidr_blocks": []any{"10.0.0.0/8"},
			},
			map[string]any{
				"from_port":   443,
				"to_port":     443,
				"protocol":    "tcp",
				"cidr_blocks": []any{"0.0.0.0/0"},
			},
		},
	}
	assert.Empty(t, v.Validate(rc, nil))
}
