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

package client

import (
	"fmt"
	"os"
	"path/filepath"
	"sync"

	"k8s.io/client-go/kubernetes"
	"k8s.io/client-go/rest"
	"k8s.io/client-go/tools/clientcmd"
	"k8s.io/client-go/util/homedir"
)

// Interface is an alias for kubernetes.Interface so fakes can stand in.
type Interface = kubernetes.Interface

var (
	mu         sync.Mutex
	cached     Interface
	kubeconfig string
)

// SetKubeconfig selects the kubeconfig used when the default client is
// first built. It has no effect once a client exists.
func SetKubeconfig(path string) {
	mu.Lock()
	defer mu.Unlock()
	kubeconfig = path
}

// Get returns the shared client, building it on first call. A failed build
// is retried on the next call.
func Get() (Interface, error) {
	mu.Lock()
	defer mu.Unlock()
	if cached != nil {
		return cached, nil
	}
	cs, _, err := Build(kubeconfig)
	if err != nil {
		return nil, err
	}
	cached = cs
	return cached, nil
}

// Override installs c as the shared client and returns a function that
// restores the previous one.
func Override(c Interface) (restore func()) {
	mu.Lock()
	prev := cached
	cached = c
	mu.Unlock()
	return func() {
		mu.Lock()
		cached = prev
		mu.Unlock()
	}
}

// Build creates a new client from path, bypassing the shared one. An empty
// path falls back to KUBECONFIG, ~/.kube/config and in-cluster config.
func Build(path string) (*kubernetes.Clientset, *rest.Config, error) {
	if path == "" {
		path = os.Getenv("KUBECONFIG")
	}
	if path == "" {
		home := filepath.Join(homedir.HomeDir(), ".kube", "config")
		if _, err := os.Stat(home); err == nil {
			path = home
		}
	}

	var (
		config *rest.Config
		err    error
	)
	if path == "" {
		config, err = rest.InClusterConfig()
		if err != nil {
			return nil, nil, fmt.Errorf("failed to get in-cluster config: %w", err)
		}
	} else {
		config, err = clientcmd.BuildConfigFromFlags("", path)
		if err != nil {
			return nil, nil, fmt.Errorf("failed to build kube config from %s: %w", path, err)
		}
	}

	cs, err := kubernetes.NewForConfig(config)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to create kubernetes client: %w", err)
	}
	return cs, config, nil
}
