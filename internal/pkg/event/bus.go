/*
 * @Description: 一个带固定Worker池的异步事件总线
 * @Author: 安知鱼
 * @Date: 2025-07-10 19:06:12
 * @LastEditTime: 2025-07-18 18:20:05
 * @LastEditors: 安知鱼
 */
package event

import (
	"log"
	"sync"
)

// 定义事件类型
type Topic string

const (
	// SitemapGenerated 在一次成功且非零数量的生成后发布，
	// 载荷为 model.SitemapGeneratedEvent
	SitemapGenerated Topic = "sitemap:generated"
	// SitemapDeleted 在一份文档被删除后发布，载荷为日期键字符串
	SitemapDeleted Topic = "sitemap:deleted"
	// BackfillCompleted 在回填队列清空时发布，载荷为已处理单元数
	BackfillCompleted Topic = "sitemap:backfill_completed"
	// BackfillHalted 在回填被协作式停止时发布，载荷为剩余单元数
	BackfillHalted Topic = "sitemap:backfill_halted"
)

// 事件处理器函数类型
type Handler func(payload interface{})

// Event 是在通道中传递的事件结构
type Event struct {
	Topic   Topic
	Payload interface{}
}

// EventBus 实现了基于Worker池的异步事件总线。
// 发布方永不阻塞，订阅方的报错或崩溃不影响生成主流程。
type EventBus struct {
	mu        sync.RWMutex
	handlers  map[Topic][]Handler
	eventChan chan Event     // 带缓冲的事件通道
	wg        sync.WaitGroup // 用于优雅关闭
}

// 定义Worker池和通道的配置
const (
	DefaultWorkerCount = 4    // 默认启动4个后台Worker
	DefaultChannelSize = 1024 // 默认事件通道缓冲区大小
)

// NewEventBus 创建并启动一个新的事件总线
func NewEventBus() *EventBus {
	bus := &EventBus{
		handlers: make(map[Topic][]Handler),
		// 创建一个带缓冲的通道，避免Publish阻塞
		eventChan: make(chan Event, DefaultChannelSize),
	}
	bus.startWorkers(DefaultWorkerCount)
	return bus
}

// startWorkers 启动固定数量的后台worker
func (b *EventBus) startWorkers(count int) {
	for i := 0; i < count; i++ {
		b.wg.Add(1)
		go b.worker(i + 1)
	}
}

// worker 是消费者，不断从通道中读取并处理事件
func (b *EventBus) worker(workerID int) {
	defer b.wg.Done()
	log.Printf("[EventBus] Worker %d started", workerID)

	for event := range b.eventChan {
		b.mu.RLock()
		handlers := b.handlers[event.Topic]
		b.mu.RUnlock()

		for _, handler := range handlers {
			b.safeInvoke(event.Topic, handler, event.Payload)
		}
	}
	log.Printf("[EventBus] Worker %d stopped", workerID)
}

// safeInvoke 执行单个handler并吸收panic，
// 保证任何订阅方都不会拖垮事件分发。
func (b *EventBus) safeInvoke(topic Topic, handler Handler, payload interface{}) {
	defer func() {
		if r := recover(); r != nil {
			log.Printf("[EventBus] WARN: Handler for topic '%s' panicked: %v", topic, r)
		}
	}()
	handler(payload)
}

// Subscribe 订阅一个事件
func (b *EventBus) Subscribe(topic Topic, handler Handler) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.handlers[topic] = append(b.handlers[topic], handler)
}

// Publish 发布一个事件
// 非阻塞操作：将事件发送到通道，通道满时丢弃并告警
func (b *EventBus) Publish(topic Topic, payload interface{}) {
	event := Event{Topic: topic, Payload: payload}

	select {
	case b.eventChan <- event:
		// 事件成功放入通道
	default:
		// 如果通道已满，这是一个警告信号，说明后台处理不过来了
		log.Printf("[EventBus] WARN: Event channel is full. Dropping event for topic '%s'.", topic)
	}
}

// Shutdown 优雅地关闭事件总线
func (b *EventBus) Shutdown() {
	log.Println("[EventBus] Shutting down...")
	close(b.eventChan) // 关闭通道，这将使worker的range循环结束
	b.wg.Wait()        // 等待所有worker完成当前任务并退出
	log.Println("[EventBus] All workers have stopped.")
}
