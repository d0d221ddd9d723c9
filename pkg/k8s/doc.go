// Copyright (c) 2025, NVIDIA CORPORATION.  All rights reserved.
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

// Package k8s groups the Kubernetes integration of recipemap.
//
// The client sub-package holds the shared clientset used to read catalogs
// from and write reports to ConfigMaps addressed as cm://namespace/name:
//
//	clientset, err := client.Get()
//	if err != nil {
//	    return err
//	}
//
// The client resolves credentials from an explicit kubeconfig, then
// KUBECONFIG and ~/.kube/config, then the in-cluster service account.
// Tests install a fake with client.Override.
package k8s
