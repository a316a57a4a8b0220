package analytics

import "testing"

func TestClassify(t *testing.T) {
	cases := []struct {
		service string
		want    Category
	}{
		{"AWS Lambda", CategoryCompute},
		{"EC2-Instances", CategoryCompute},
		{"Cloud Functions", CategoryCompute},
		{"Fargate", CategoryCompute},
		{"S3", CategoryStorage},
		{"Cloud Storage", CategoryStorage},
		{"Blob Storage Bucket", CategoryStorage},
		{"Amazon Glacier", CategoryStorage},
		{"RDS", CategoryDatabase},
		{"DynamoDB", CategoryDatabase},
		{"Firestore", CategoryDatabase},
		{"Aurora Serverless", CategoryDatabase},
		{"CloudWatch", CategoryObservability},
		{"Datadog", CategoryObservability},
		{"Cloud Logging", CategoryObservability},
		{"AWS X-Ray", CategoryObservability},
		{"CloudFront", CategoryNetwork},
		{"Elastic Load Balancer", CategoryNetwork},
		{"Vercel Bandwidth", CategoryNetwork},
		{"Route 53", CategoryNetwork},
		{"Step Functions", CategoryAutomation},
		{"EventBridge", CategoryAutomation},
		{"Vercel Cron Jobs", CategoryAutomation},
		{"Cloud Scheduler", CategoryAutomation},
		{"Mystery Service", CategoryOther},
		{"", CategoryOther},
	}
	for _, tc := range cases {
		if got := Classify(tc.service); got != tc.want {
			t.Fatalf("Classify(%q) = %s, want %s", tc.service, got, tc.want)
		}
	}
}

// Multi-word automation names contain compute substrings; the rule order
// must not let the broader pattern win.
func TestClassifyRulePrecedence(t *testing.T) {
	cases := []struct {
		service string
		want    Category
	}{
		{"Step Functions", CategoryAutomation},
		{"AWS Step Functions", CategoryAutomation},
		{"Lambda Function", CategoryCompute},
	}
	for _, tc := range cases {
		if got := Classify(tc.service); got != tc.want {
			t.Fatalf("Classify(%q) = %s, want %s", tc.service, got, tc.want)
		}
	}
}

func TestClassifyCaseInsensitive(t *testing.T) {
	if Classify("LAMBDA") != Classify("lambda") {
		t.Fatal("classification should ignore case")
	}
	if Classify("aws lambda") != CategoryCompute {
		t.Fatal("lowercase input should still match")
	}
}

// Every string maps to exactly one of the seven fixed categories.
func TestClassifyIsTotal(t *testing.T) {
	known := map[Category]bool{}
	for _, c := range categoryOrder {
		known[c] = true
	}
	inputs := []string{"", "   ", "λambda", "s3s3s3", "load balancer cdn", "x", "\x00weird"}
	for _, in := range inputs {
		if !known[Classify(in)] {
			t.Fatalf("Classify(%q) returned unknown category %q", in, Classify(in))
		}
	}
}
