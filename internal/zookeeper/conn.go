// internal/zookeeper/conn.go
package zookeeper

import (
	"time"

	"github.com/go-zookeeper/zk"
	"github.com/pkg/errors"
)

// Conn 包装了 ZooKeeper 连接
type Conn struct {
	*zk.Conn
}

// Connect 连接 ZooKeeper 集群
func Connect(servers []string, sessionTimeout time.Duration) (*Conn, error) {
	conn, _, err := zk.Connect(servers, sessionTimeout, zk.WithLogInfo(false))
	if err != nil {
		return nil, errors.Wrap(err, "connect zookeeper")
	}
	return &Conn{Conn: conn}, nil
}

// ensurePath 逐级创建持久节点，已存在时忽略
func (c *Conn) ensurePath(path string) error {
	if exists, _, err := c.Exists(path); err != nil {
		return err
	} else if exists {
		return nil
	}
	_, err := c.Create(path, []byte(""), 0, zk.WorldACL(zk.PermAll))
	if err != nil && !errors.Is(err, zk.ErrNodeExists) {
		return err
	}
	return nil
}
